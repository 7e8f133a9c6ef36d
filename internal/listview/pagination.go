package listview

type Pagination struct {
	Page  int
	Limit int
	Total int
}

func NewPagination(q Query, total int) Pagination {
	return Pagination{Page: q.Page, Limit: q.Limit, Total: total}
}

func (p Pagination) TotalPages() int {
	if p.Total <= 0 || p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// Clamp keeps page inside [1, TotalPages]; with no pages it returns 1.
func (p Pagination) Clamp(page int) int {
	last := max(p.TotalPages(), 1)
	return min(max(page, 1), last)
}

// GoTo moves q to target. Out-of-range targets and the current page are no-ops.
func (p Pagination) GoTo(q Query, target int) (Query, bool) {
	if target < 1 || target > p.TotalPages() || target == q.Page {
		return q, false
	}
	return q.WithPage(target), true
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }

func (p Pagination) HasNext() bool { return p.Page < p.TotalPages() }

// First and Last are the 1-based positions of the rows on the current page.
func (p Pagination) First() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Page-1)*p.Limit + 1
}

func (p Pagination) Last() int {
	return min(p.Page*p.Limit, p.Total)
}

// Window lists the page numbers the pager shows: the first and last page plus
// radius pages around the current one. Gaps are marked with 0.
func (p Pagination) Window(radius int) []int {
	total := p.TotalPages()
	if total == 0 {
		return nil
	}
	out := make([]int, 0, 2*radius+5)
	prev := 0
	for n := 1; n <= total; n++ {
		if n != 1 && n != total && (n < p.Page-radius || n > p.Page+radius) {
			continue
		}
		if prev != 0 && n-prev > 1 {
			out = append(out, 0)
		}
		out = append(out, n)
		prev = n
	}
	return out
}
