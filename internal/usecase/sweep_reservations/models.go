package sweep_reservations

// Response результат одного прохода очистки
type Response struct {
	Cutoff  string // бронирования с датой раньше cutoff считаются устаревшими
	Batches int
	Deleted int64
}
