package book

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	YearMin   = 1000
	RatingMin = 1
	RatingMax = 5
	// maxWhole bounds numeric form values so the int conversion never overflows.
	maxWhole = math.MaxInt32
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// bookRules holds the per-field constraints checked by the struct validator.
// A nil field was not submitted and is skipped.
type bookRules struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=300"`
	Author      *string `json:"author" validate:"omitnil,min=1,max=200"`
	Cover       *string `json:"cover" validate:"omitnil,max=2048"`
	ISBN        *string `json:"isbn" validate:"omitnil,max=32"`
	Pages       *int    `json:"pages" validate:"omitnil,gte=0"`
	CurrentPage *int    `json:"currentPage" validate:"omitnil,gte=0"`
	Status      *string `json:"status" validate:"omitnil,oneof=WANT_TO_READ READING FINISHED PAUSED ABANDONED"`
}

/* Validates a candidate for a new book, filling every default. */
func ValidateCreate(c Candidate, currentYear int) (BookPatch, error) {
	if c.Title.IsUnchanged() {
		c.Title = Set("")
	}
	if c.Author.IsUnchanged() {
		c.Author = Set("")
	}

	p, err := validateCandidate(c, currentYear)
	if err != nil {
		return BookPatch{}, err
	}

	if !p.Cover.IsSet() {
		p.Cover = Set(DefaultCover)
	}
	if !p.Status.IsSet() {
		p.Status = Set(StatusWantToRead)
	}
	return p, nil
}

/* Validates a candidate for a partial update. Fields that were not submitted are not checked. */
func ValidateUpdate(c Candidate, currentYear int) (BookPatch, error) {
	return validateCandidate(c, currentYear)
}

func validateCandidate(c Candidate, currentYear int) (BookPatch, error) {
	fe := FieldErrors{}
	p := BookPatch{
		Title:    c.Title,
		Author:   c.Author,
		Cover:    c.Cover,
		Synopsis: c.Synopsis,
		ISBN:     c.ISBN,
		Notes:    c.Notes,
	}

	p.Year = wholeNumber(c.Year, FieldYear, fe)
	p.Pages = wholeNumber(c.Pages, FieldPages, fe)
	p.CurrentPage = wholeNumber(c.CurrentPage, FieldCurrentPage, fe)
	p.Rating = wholeNumber(clampRating(c.Rating), FieldRating, fe)

	rules := bookRules{
		Title:       c.Title.Ptr(),
		Author:      c.Author.Ptr(),
		Cover:       c.Cover.Ptr(),
		ISBN:        c.ISBN.Ptr(),
		Pages:       p.Pages.Ptr(),
		CurrentPage: p.CurrentPage.Ptr(),
		Status:      c.Status.Ptr(),
	}
	if err := structValidator.Struct(rules); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return BookPatch{}, fmt.Errorf("validating book: %w", err)
		}
		for _, e := range validationErrs {
			fe.Add(e.Field(), friendlyMessage(e))
		}
	}

	if year, ok := p.Year.Get(); ok && (year < YearMin || year > currentYear) {
		fe.Add(FieldYear, fmt.Sprintf("must be a year between %d and %d", YearMin, currentYear))
	}

	CheckPageProgress(p.Pages.Ptr(), p.CurrentPage.Ptr(), fe)

	if status, ok := c.Status.Get(); ok {
		p.Status = Set(Status(status))
	}

	edge, err := ResolveGenreEdge(c.GenreID)
	if err != nil {
		fe.Add(FieldGenreID, ErrResponseGenreNotFound.Message)
	}
	p.Genre = edge

	if !fe.Empty() {
		return BookPatch{}, NewValidationError(fe)
	}
	return p, nil
}

/* Records a violation on both page fields when the current page is past the end of the book. */
func CheckPageProgress(pages, currentPage *int, fe FieldErrors) {
	if pages == nil || currentPage == nil || *currentPage <= *pages {
		return
	}
	fe.Add(FieldCurrentPage, fmt.Sprintf("must not exceed the number of pages (%d)", *pages))
	fe.Add(FieldPages, fmt.Sprintf("must be at least the current page (%d)", *currentPage))
}

func wholeNumber(f Field[float64], name string, fe FieldErrors) Field[int] {
	n, ok := f.Get()
	switch {
	case f.IsUnchanged():
		return Unchanged[int]()
	case !ok:
		return Cleared[int]()
	case n != math.Trunc(n):
		fe.Add(name, "must be a whole number")
		return Unchanged[int]()
	case math.Abs(n) > maxWhole:
		fe.Add(name, "is too large")
		return Unchanged[int]()
	}
	return Set(int(n))
}

// clampRating corrects out-of-range ratings instead of refusing them.
// Zero means "no rating". It runs on the parsed number so huge inputs clamp too.
func clampRating(f Field[float64]) Field[float64] {
	r, ok := f.Get()
	if !ok {
		return f
	}
	if r == 0 {
		return Cleared[float64]()
	}
	return Set(math.Min(RatingMax, math.Max(RatingMin, r)))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "min":
		if e.Param() == "1" {
			return "is required"
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}
