package medicines

// SampleMedicines es el set fijo que se ofrece cuando el OCR no está disponible
// (sin credencial o cuota agotada) para que el usuario pueda probar el flujo.
func SampleMedicines() []MedicineDetails {
	return []MedicineDetails{
		{
			Name:      "Paracetamol 500mg",
			Dosage:    "1 tablet",
			Frequency: FrequencyThriceDaily,
			Duration:  5,
			Notes:     "After food",
		},
		{
			Name:      "Amoxicillin 250mg",
			Dosage:    "1 capsule",
			Frequency: FrequencyTwiceDaily,
			Duration:  7,
		},
		{
			Name:      "Vitamin D3",
			Dosage:    "1 tablet",
			Frequency: FrequencyOnceDaily,
			Duration:  30,
			Notes:     "With breakfast",
		},
	}
}
