package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/library-tracker/cmd/api/book"
	"github.com/rs/zerolog"
)

var seedGenreNames = []string{
	"Ficção Científica",
	"Fantasia",
	"Realismo Mágico",
	"Romance Histórico",
	"Tecnologia",
}

type seedBook struct {
	genre string
	form  url.Values
}

var seedBooks = []seedBook{
	{"Ficção Científica", url.Values{
		"title":       {"O Guia do Mochileiro das Galáxias"},
		"author":      {"Douglas Adams"},
		"year":        {"1979"},
		"pages":       {"208"},
		"currentPage": {"50"},
		"rating":      {"4"},
		"synopsis":    {"As desventuras de Arthur Dent após a destruição da Terra e sua viagem pela galáxia com um guia de viagem excêntrico."},
		"status":      {string(book.StatusReading)},
	}},
	{"Realismo Mágico", url.Values{
		"title":       {"Cem Anos de Solidão"},
		"author":      {"Gabriel García Márquez"},
		"year":        {"1967"},
		"pages":       {"417"},
		"currentPage": {"417"},
		"rating":      {"5"},
		"synopsis":    {"A história da família Buendía na fictícia Macondo, um marco do realismo mágico latino-americano."},
		"status":      {string(book.StatusFinished)},
	}},
	{"Fantasia", url.Values{
		"title":       {"O Nome do Vento"},
		"author":      {"Patrick Rothfuss"},
		"year":        {"2007"},
		"pages":       {"656"},
		"currentPage": {"0"},
		"rating":      {"0"},
		"synopsis":    {"O primeiro livro da Crônica do Matador do Rei. A história de Kvothe, um mago e músico lendário."},
		"status":      {string(book.StatusWantToRead)},
	}},
	{"Tecnologia", url.Values{
		"title":       {"A Revolução do Software"},
		"author":      {"Steve McConnell"},
		"year":        {"2004"},
		"pages":       {"960"},
		"currentPage": {"0"},
		"rating":      {"0"},
		"synopsis":    {"Um guia fundamental sobre as melhores práticas de engenharia de software."},
		"status":      {string(book.StatusPaused)},
	}},
	{"Romance Histórico", url.Values{
		"title":       {"Pilar de Fogo"},
		"author":      {"Ken Follett"},
		"year":        {"2017"},
		"pages":       {"900"},
		"currentPage": {"150"},
		"rating":      {"3"},
		"synopsis":    {"Um épico ambientado na Europa do século XVI, durante as guerras religiosas."},
		"status":      {string(book.StatusReading)},
	}},
}

/* Creates the missing sample genres and, when the library is empty, the sample books. Running it twice changes nothing. */
func seedLibrary(ctx context.Context, repo book.Repository, logger zerolog.Logger) error {
	genres, err := seedGenres(ctx, repo, logger)
	if err != nil {
		return err
	}

	existing, err := repo.ListBooks(ctx, book.Filter{})
	if err != nil {
		return fmt.Errorf("seeding books: %w", err)
	}
	if len(existing) > 0 {
		logger.Info().Int("books", len(existing)).Msg("library is not empty, skipping sample books")
		return nil
	}

	bookService := book.NewService(repo, nil, 0, logger)
	for _, sb := range seedBooks {
		form := url.Values{}
		for k, v := range sb.form {
			form[k] = v
		}
		form.Set(book.FieldGenreID, genres[sb.genre].ID.String())

		res := bookService.SaveBook(ctx, form)
		if !res.Success {
			return fmt.Errorf("seeding book %q: %s %v", form.Get(book.FieldTitle), res.Message, res.FieldErrors)
		}
	}

	logger.Info().Int("books", len(seedBooks)).Msg("sample books created")
	return nil
}

func seedGenres(ctx context.Context, repo book.Repository, logger zerolog.Logger) (map[string]book.Genre, error) {
	stored, err := repo.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("seeding genres: %w", err)
	}

	byName := make(map[string]book.Genre, len(stored))
	for _, g := range stored {
		byName[g.Name] = g
	}

	created := 0
	for _, name := range seedGenreNames {
		if _, found := byName[name]; found {
			continue
		}
		g, err := repo.CreateGenre(ctx, book.Genre{
			ID:        uuid.New(),
			Name:      name,
			CreatedAt: time.Now().UTC().Round(time.Millisecond),
		})
		if err != nil {
			return nil, fmt.Errorf("seeding genre %q: %w", name, err)
		}
		byName[name] = g
		created++
	}

	logger.Info().Int("created", created).Int("total", len(byName)).Msg("genres created/updated")
	return byName, nil
}
