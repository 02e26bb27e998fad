package mmu

// Statistics are the counters accumulated by an MMU.
type Statistics struct {
	Accesses        uint64
	Faults          uint64
	WriteBacks      uint64
	TranslationCost uint64
}

// Hits returns the number of accesses that found their page resident.
func (s Statistics) Hits() uint64 {
	return s.Accesses - s.Faults
}

// AverageCost returns the mean translation cost per access.
func (s Statistics) AverageCost() float64 {
	if s.Accesses == 0 {
		return 0
	}

	return float64(s.TranslationCost) / float64(s.Accesses)
}

// FaultRate returns the fraction of accesses that faulted.
func (s Statistics) FaultRate() float64 {
	if s.Accesses == 0 {
		return 0
	}

	return float64(s.Faults) / float64(s.Accesses)
}
