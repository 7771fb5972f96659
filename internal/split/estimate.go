package split

// EstimateEventsPerFile guesses how many events fit into maxFilesize
// bytes. The input size is scaled by the kept/total ratio first, so
// filtered-out events do not inflate the per-event byte estimate. A
// zero result means everything goes into one file.
func EstimateEventsPerFile(inputSize int64, total, kept, maxFilesize int) int {
	if total == 0 || kept == 0 || inputSize == 0 {
		return 0
	}
	keptSize := inputSize * int64(kept) / int64(total)
	if keptSize == 0 {
		return 0
	}
	return int(int64(total) * int64(maxFilesize) / keptSize)
}
