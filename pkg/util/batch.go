package util

// Batch 把记录切片按固定大小拆分供分批落库，最后一批可能不足 batchSize。
// batchSize 非法时整体作为一批。
func Batch[T any](items []T, batchSize int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if batchSize <= 0 || batchSize > len(items) {
		batchSize = len(items)
	}
	batches := make([][]T, 0, (len(items)+batchSize-1)/batchSize)
	for len(items) > 0 {
		n := batchSize
		if n > len(items) {
			n = len(items)
		}
		chunk := make([]T, n)
		copy(chunk, items[:n])
		batches = append(batches, chunk)
		items = items[n:]
	}
	return batches
}
