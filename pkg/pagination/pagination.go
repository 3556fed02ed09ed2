package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds limit/skip pagination inputs from controllers or services.
type Params struct {
	Limit int
	Skip  int
}

// Normalize applies the default limit, the provided cap (MaxLimit when zero)
// and clamps a negative skip to zero.
func (p Params) Normalize(max int) Params {
	if max <= 0 {
		max = MaxLimit
	}
	return Params{Limit: NormalizeLimit(p.Limit, max), Skip: maxInt(p.Skip, 0)}
}

// NormalizeLimit enforces the default and maximum limits.
func NormalizeLimit(limit, max int) int {
	if max <= 0 {
		max = MaxLimit
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > max {
		return max
	}
	return limit
}

// Window returns the [start, end) slice bounds of the page within total rows.
func (p Params) Window(total int) (int, int) {
	start := maxInt(p.Skip, 0)
	if start > total {
		start = total
	}
	end := total
	if p.Limit > 0 && start+p.Limit < total {
		end = start + p.Limit
	}
	return start, end
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
