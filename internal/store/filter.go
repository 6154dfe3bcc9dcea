package store

import (
	"strings"

	"github.com/erazemk/izgubljeno/internal/model"
)

// Listing sort orders.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

// Listing page bounds.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// ItemFilter selects and orders items for ListItems. Zero values mean
// "not set".
type ItemFilter struct {
	Type     string
	Status   string
	Category string
	Search   string
	Sort     string
	Limit    int
	Offset   int
}

// predicate is a single WHERE condition together with the values bound to
// its placeholders.
type predicate struct {
	cond string
	args []any
}

// predicates accumulates conditions in order. Values only ever travel as
// bound arguments.
type predicates []predicate

func (p *predicates) add(cond string, args ...any) {
	*p = append(*p, predicate{cond: cond, args: args})
}

// where renders the accumulated conditions joined by AND.
func (p predicates) where() (string, []any) {
	if len(p) == 0 {
		return "", nil
	}
	conds := make([]string, 0, len(p))
	var args []any
	for _, pr := range p {
		conds = append(conds, pr.cond)
		args = append(args, pr.args...)
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

const itemListSelect = `SELECT ` + itemColumns + `,
        u.student_id, u.full_name,
        (SELECT COUNT(*) FROM comments c WHERE c.item_id = i.id)
 FROM items i
 LEFT JOIN users u ON u.id = i.user_id`

// Query builds the listing statement and its arguments.
func (f ItemFilter) Query() (string, []any) {
	var preds predicates

	if model.ValidItemType(f.Type) {
		preds.add("i.item_type = ?", f.Type)
	}

	status := f.Status
	if status == "" {
		status = model.ItemStatusActive
	}
	preds.add("i.status = ?", status)

	if f.Category != "" {
		preds.add("i.category = ?", f.Category)
	}

	if f.Search != "" {
		// SQLite's LIKE only folds ASCII, so both sides are lower-cased.
		pattern := "%" + strings.ToLower(escapeLike(f.Search)) + "%"
		preds.add(`(fold(i.title) LIKE ? ESCAPE '\' OR fold(i.description) LIKE ? ESCAPE '\' OR fold(i.location) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern)
	}

	where, args := preds.where()

	order := " ORDER BY i.date_lost_found DESC, i.created_at DESC, i.id DESC"
	if f.Sort == SortOldest {
		order = " ORDER BY i.date_lost_found ASC, i.created_at ASC, i.id ASC"
	}

	limit, offset := f.page()
	args = append(args, limit, offset)

	return itemListSelect + where + order + " LIMIT ? OFFSET ?", args
}

// page returns the normalised limit and offset.
func (f ItemFilter) page() (int, int) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in s match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
