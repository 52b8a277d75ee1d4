package notify

import "sync"

type PermissionState string

const (
	PermissionDefault PermissionState = "default"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

// Permission es el permiso (único) para notificaciones de sistema.
// Hasta que el usuario decide, el estado es "default" y se usa el toast.
type Permission struct {
	mu    sync.RWMutex
	state PermissionState
}

func NewPermission(granted bool) *Permission {
	p := &Permission{state: PermissionDefault}
	if granted {
		p.state = PermissionGranted
	}
	return p
}

func (p *Permission) Set(granted bool) PermissionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if granted {
		p.state = PermissionGranted
	} else {
		p.state = PermissionDenied
	}
	return p.state
}

func (p *Permission) State() PermissionState {
	if p == nil {
		return PermissionDefault
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Permission) Granted() bool {
	return p.State() == PermissionGranted
}
