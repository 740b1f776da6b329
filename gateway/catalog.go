package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Namen aller Katalog-Operationen. Die Strings sind stabil und bilden
// zusammen den gesamten Draht-Vertrag zwischen UI- und Store-Prozess.
const (
	OpEnsureReviewsSchema    = "ensure-reviews-schema"
	OpEnsureUserSchema       = "ensure-user-schema"
	OpFetchUser              = "fetch-user"
	OpFetchRowCount          = "fetch-row-count"
	OpFetchRowData           = "fetch-row-data"
	OpFetchRowDataFromID     = "fetch-row-data-from-id"
	OpFetchExpandedCounts    = "fetch-expanded-counts"
	OpFetchParaphrasedCounts = "fetch-paraphrased-counts"
	OpAddReview              = "add-review"
	OpFetchAllReviews        = "fetch-all-reviews"
)

// Kind bestimmt, wie der generische Executor das Ergebnis einer
// SQL-gestützten Operation liest.
type Kind int

const (
	KindRow  Kind = iota // höchstens eine Zeile; kein Treffer ist kein Fehler
	KindRows             // beliebig viele Zeilen
)

// Operation bildet einen Operationsnamen auf ein fest verdrahtetes,
// parametrisiertes Statement oder einen eigenen Runner ab. Genau eines von
// Query und Run ist gesetzt; Bind extrahiert und prüft die Parameter.
type Operation struct {
	Name  string
	Kind  Kind
	Write bool
	Query string
	Bind  func(args []any) ([]any, error)
	Run   func(ctx context.Context, g *Gateway, args []any) (any, error)
}

// catalog ist die datengetriebene Tabelle aller benannten Operationen.
var catalog = map[string]Operation{
	OpFetchRowCount: {
		Name:  OpFetchRowCount,
		Kind:  KindRow,
		Query: "SELECT COUNT(*) AS count FROM data",
	},
	OpFetchRowData: {
		Name:  OpFetchRowData,
		Kind:  KindRow,
		Query: "SELECT * FROM data WHERE combined_id = ?",
		Bind:  bindString,
	},
	OpFetchRowDataFromID: {
		Name:  OpFetchRowDataFromID,
		Kind:  KindRow,
		Query: "SELECT * FROM data WHERE id = ?",
		Bind:  bindInt,
	},
	OpFetchExpandedCounts: {
		Name:  OpFetchExpandedCounts,
		Kind:  KindRows,
		Query: "SELECT template_id, COUNT(DISTINCT expanded_id) AS count FROM data GROUP BY template_id",
	},
	OpFetchParaphrasedCounts: {
		Name:  OpFetchParaphrasedCounts,
		Kind:  KindRows,
		Query: "SELECT template_id, expanded_id, COUNT(paraphrased_id) AS count FROM data WHERE template_id = ? AND expanded_id = ?",
		Bind:  bindIntPair,
	},
	OpFetchUser: {
		Name: OpFetchUser,
		Run: func(ctx context.Context, g *Gateway, _ []any) (any, error) {
			return g.FetchUser(ctx)
		},
	},
	OpEnsureReviewsSchema: {
		Name:  OpEnsureReviewsSchema,
		Write: true,
		Run: func(ctx context.Context, g *Gateway, _ []any) (any, error) {
			return nil, g.EnsureReviewsSchema(ctx)
		},
	},
	OpEnsureUserSchema: {
		Name:  OpEnsureUserSchema,
		Write: true,
		Run: func(ctx context.Context, g *Gateway, _ []any) (any, error) {
			return nil, g.EnsureUserSchema(ctx)
		},
	},
	OpAddReview: {
		Name:  OpAddReview,
		Write: true,
		Run: func(ctx context.Context, g *Gateway, args []any) (any, error) {
			review, err := decodeReview(args)
			if err != nil {
				return nil, &OpError{Op: OpAddReview, Err: err}
			}
			return g.AddReview(ctx, review)
		},
	},
	OpFetchAllReviews: {
		Name: OpFetchAllReviews,
		Run: func(ctx context.Context, g *Gateway, _ []any) (any, error) {
			return g.FetchAllReviews(ctx)
		},
	},
}

func bindString(args []any) ([]any, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("missing argument")
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("argument must be a string")
	}
	return []any{s}, nil
}

func bindInt(args []any) ([]any, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("missing argument")
	}
	n, ok := coerceInt(args[0])
	if !ok {
		return nil, fmt.Errorf("argument must be an integer")
	}
	return []any{n}, nil
}

func bindIntPair(args []any) ([]any, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("two arguments required")
	}
	a, okA := coerceInt(args[0])
	b, okB := coerceInt(args[1])
	if !okA || !okB {
		return nil, fmt.Errorf("arguments must be integers")
	}
	return []any{a, b}, nil
}

// coerceInt akzeptiert neben echten Zahlen auch JSON-float64 und String-Zahlen.
func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err == nil {
			return i, true
		}
		return 0, false
	default:
		return 0, false
	}
}
