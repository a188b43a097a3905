// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package models

import "strings"

// Canonical genre tags. Program rows carry zero or more of these in
// the canonical_genre column, encoded with EncodeGenres.
const (
	GenreFamilyKids     = "FAMILY_KIDS"
	GenreSports         = "SPORTS"
	GenreShopping       = "SHOPPING"
	GenreMovies         = "MOVIES"
	GenreComedy         = "COMEDY"
	GenreTravel         = "TRAVEL"
	GenreDrama          = "DRAMA"
	GenreEducation      = "EDUCATION"
	GenreAnimalWildlife = "ANIMAL_WILDLIFE"
	GenreNews           = "NEWS"
	GenreGaming         = "GAMING"
	GenreArts           = "ARTS"
	GenreEntertainment  = "ENTERTAINMENT"
	GenreLifeStyle      = "LIFE_STYLE"
	GenreMusic          = "MUSIC"
	GenrePremier        = "PREMIER"
	GenreTechScience    = "TECH_SCIENCE"
)

var canonicalGenres = map[string]struct{}{
	GenreFamilyKids:     {},
	GenreSports:         {},
	GenreShopping:       {},
	GenreMovies:         {},
	GenreComedy:         {},
	GenreTravel:         {},
	GenreDrama:          {},
	GenreEducation:      {},
	GenreAnimalWildlife: {},
	GenreNews:           {},
	GenreGaming:         {},
	GenreArts:           {},
	GenreEntertainment:  {},
	GenreLifeStyle:      {},
	GenreMusic:          {},
	GenrePremier:        {},
	GenreTechScience:    {},
}

// IsCanonicalGenre reports whether g is one of the canonical tags.
func IsCanonicalGenre(g string) bool {
	_, ok := canonicalGenres[g]
	return ok
}

// EncodeGenres joins genres with commas. A comma or double quote
// inside a genre is escaped by a preceding double quote, so the
// encoding round-trips arbitrary genre strings.
func EncodeGenres(genres ...string) string {
	var sb strings.Builder
	for i, g := range genres {
		if i > 0 {
			sb.WriteByte(',')
		}
		for _, r := range g {
			if r == ',' || r == '"' {
				sb.WriteByte('"')
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// DecodeGenres splits an encoded genre string. A double quote escapes
// the following character; unescaped commas separate entries. Entries
// are trimmed of surrounding whitespace.
func DecodeGenres(encoded string) []string {
	if encoded == "" {
		return nil
	}
	var out []string
	var sb strings.Builder
	escape := false
	for _, r := range encoded {
		if escape {
			escape = false
			sb.WriteRune(r)
			continue
		}
		switch r {
		case '"':
			escape = true
		case ',':
			out = append(out, strings.TrimSpace(sb.String()))
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}
	out = append(out, strings.TrimSpace(sb.String()))
	return out
}

// broadcastGenreMap maps uppercased broadcast genre names from the
// ATSC, DVB, ISDB, and ISDB-BR category tables onto canonical tags.
// Unmapped names are dropped during conversion.
var broadcastGenreMap = buildBroadcastGenreMap()

func buildBroadcastGenreMap() map[string]string {
	m := make(map[string]string)
	add := func(pairs map[string]string) {
		for k, v := range pairs {
			m[strings.ToUpper(k)] = v
		}
	}
	// ATSC A/65 categorical genre codes.
	add(map[string]string{
		"Movie":            GenreMovies,
		"Sports event":     GenreSports,
		"Sports non-event": GenreSports,
		"Sports talk":      GenreSports,
		"News":             GenreNews,
		"Weather":          GenreNews,
		"Talk":             GenreEntertainment,
		"Comedy":           GenreComedy,
		"Drama":            GenreDrama,
		"Music":            GenreMusic,
		"Shopping":         GenreShopping,
		"Educational":      GenreEducation,
		"Instructional":    GenreEducation,
		"Children":         GenreFamilyKids,
		"Travel":           GenreTravel,
		"Arts":             GenreArts,
		"Animals":          GenreAnimalWildlife,
		"Nature":           GenreAnimalWildlife,
		"Science":          GenreTechScience,
		"Computers":        GenreTechScience,
		"Technology":       GenreTechScience,
		"Game show":        GenreGaming,
		"Video":            GenreGaming,
		"Health":           GenreLifeStyle,
		"House/garden":     GenreLifeStyle,
		"Cooking":          GenreLifeStyle,
		"Fashion":          GenreLifeStyle,
		"Premiere":         GenrePremier,
	})
	// DVB EN 300 468 level-1 content categories.
	add(map[string]string{
		"Movie/Drama":                       GenreMovies,
		"News/Current affairs":              GenreNews,
		"Show/Game show":                    GenreEntertainment,
		"Sports":                            GenreSports,
		"Children's/Youth programmes":       GenreFamilyKids,
		"Music/Ballet/Dance":                GenreMusic,
		"Arts/Culture (without music)":      GenreArts,
		"Social/Political issues/Economics": GenreNews,
		"Education/Science/Factual topics":  GenreEducation,
		"Leisure hobbies":                   GenreLifeStyle,
	})
	// ISDB (ARIB STD-B10) program genres.
	add(map[string]string{
		"News/Report":                GenreNews,
		"Information/TV wide show":   GenreEntertainment,
		"Variety show":               GenreEntertainment,
		"Movies":                     GenreMovies,
		"Anime/Special effect movie": GenreMovies,
		"Documentary/Culture":        GenreArts,
		"Theater/Public performance": GenreArts,
		"Hobby/Education":            GenreEducation,
		"Welfare":                    GenreLifeStyle,
	})
	// ISDB-BR (SBTVD) program genres.
	add(map[string]string{
		"Jornalismo":        GenreNews,
		"Esporte":           GenreSports,
		"Educativo":         GenreEducation,
		"Novela":            GenreDrama,
		"Minissérie":        GenreDrama,
		"Série/seriado":     GenreDrama,
		"Variedade":         GenreEntertainment,
		"Reality show":      GenreEntertainment,
		"Informação":        GenreNews,
		"Humorístico":       GenreComedy,
		"Infantil":          GenreFamilyKids,
		"Erótico":           GenreEntertainment,
		"Filme":             GenreMovies,
		"Sorteio":           GenreEntertainment,
		"Debate/Entrevista": GenreNews,
	})
	return m
}

// ValidateCanonicalGenres checks an encoded canonical genre string.
// It returns false when any entry is not a canonical tag; callers
// clear the column in that case instead of rejecting the write.
func ValidateCanonicalGenres(encoded string) bool {
	for _, g := range DecodeGenres(encoded) {
		if !IsCanonicalGenre(g) {
			return false
		}
	}
	return true
}

// MapBroadcastGenres converts an encoded broadcast genre string into
// an encoded canonical genre string. Unmapped entries are dropped and
// duplicates collapse; the result is "" when nothing maps.
func MapBroadcastGenres(encoded string) string {
	seen := make(map[string]struct{})
	var out []string
	for _, g := range DecodeGenres(encoded) {
		canonical, ok := broadcastGenreMap[strings.ToUpper(g)]
		if !ok {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	if len(out) == 0 {
		return ""
	}
	return EncodeGenres(out...)
}
