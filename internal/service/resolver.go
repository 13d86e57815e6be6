package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/fortuna/courtside/internal/store"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// PlayerReader is the read side of the player store
type PlayerReader interface {
	PlayerNames(ctx context.Context) ([]string, error)
	GetPlayer(ctx context.Context, name string) (*store.PlayerStatRecord, error)
}

// Resolver turns free chat text into a stored player record
type Resolver struct {
	players PlayerReader
	aliases map[string]string
	logger  *zap.Logger
}

// NewResolver creates a resolver. A nil alias table uses DefaultAliases.
func NewResolver(players PlayerReader, aliases map[string]string, logger *zap.Logger) *Resolver {
	if aliases == nil {
		aliases = DefaultAliases
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		players: players,
		aliases: aliases,
		logger:  logger.Named("resolver"),
	}
}

// Canonical applies the alias table to text: the raw text first, then its
// trimmed lower-case form. Text without an alias is returned unchanged.
func (r *Resolver) Canonical(text string) string {
	if name, ok := r.aliases[text]; ok {
		return name
	}
	if name, ok := r.aliases[strings.ToLower(strings.TrimSpace(text))]; ok {
		return name
	}
	return text
}

// Resolve returns the record best matching text, or nil when nothing matches.
// Only store failures are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, text string) (*store.PlayerStatRecord, error) {
	query := r.Canonical(text)

	names, err := r.players.PlayerNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}

	name, ok := MatchName(query, names)
	if !ok {
		r.logger.Debug("no player matched", zap.String("text", text))
		return nil, nil
	}

	rec, err := r.players.GetPlayer(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching player %q: %w", name, err)
	}

	r.logger.Debug("resolved player",
		zap.String("text", text),
		zap.String("player", name))
	return rec, nil
}

// MatchName picks the stored name containing query, ignoring case. Only
// when no name matches that way are accents on Latin letters ignored too, so
// "doncic" finds "Luka Dončić" but "Dragić" prefers "Goran Dragić" over
// "Dragic". Several matches resolve to the shortest name, then the
// lexicographically smallest. An empty query matches nothing.
func MatchName(query string, names []string) (string, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", false
	}

	if name, ok := bestMatch(lower(query), names, lower); ok {
		return name, true
	}
	return bestMatch(fold(query), names, fold)
}

func bestMatch(needle string, names []string, key func(string) string) (string, bool) {
	best := ""
	found := false
	for _, name := range names {
		if !strings.Contains(key(name), needle) {
			continue
		}
		if !found || better(name, best) {
			best = name
			found = true
		}
	}
	return best, found
}

func better(a, b string) bool {
	la, lb := len([]rune(a)), len([]rune(b))
	if la != lb {
		return la < lb
	}
	return a < b
}

func lower(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// fold lower-cases s and strips combining marks that follow a Latin letter
// ("Dončić" -> "doncic"). Marks on other scripts, such as kana voicing marks,
// are kept.
func fold(s string) string {
	var b strings.Builder
	latinBase := false
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			if latinBase {
				continue
			}
		} else {
			latinBase = unicode.Is(unicode.Latin, r)
		}
		b.WriteRune(r)
	}
	return lower(b.String())
}
