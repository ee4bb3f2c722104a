package book

import "context"

type Stats struct {
	Total       int
	Reading     int
	Finished    int
	PagesTotal  int
	PagesRead   int
	PercentRead int
}

/* Summarizes the books matching f. Finished books count all their pages as read. */
func (s *Service) Stats(ctx context.Context, f Filter) (Stats, error) {
	books, err := s.ListBooks(ctx, f)
	if err != nil {
		return Stats{}, err
	}
	return Summarize(books), nil
}

func Summarize(books []Book) Stats {
	st := Stats{Total: len(books)}
	for _, b := range books {
		pages := 0
		if b.Pages != nil {
			pages = *b.Pages
		}
		st.PagesTotal += pages

		switch b.Status {
		case StatusReading:
			st.Reading++
		case StatusFinished:
			st.Finished++
			st.PagesRead += pages
			continue
		}
		if b.CurrentPage != nil {
			st.PagesRead += *b.CurrentPage
		}
	}
	if st.PagesTotal > 0 {
		st.PercentRead = (st.PagesRead*100 + st.PagesTotal/2) / st.PagesTotal
	}
	return st
}
