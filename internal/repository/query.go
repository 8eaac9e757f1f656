package repository

import (
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// PerPage is the fixed page size of every listing.
const PerPage = 10

// MaxPage caps page numbers so the offset stays a valid MySQL OFFSET.
const MaxPage = math.MaxInt32 / PerPage

// Page selects a 1-based page of a listing.
type Page struct {
	Number int
}

// Limit returns the LIMIT/OFFSET pair for the page.
func (p Page) Limit() (limit, offset int) {
	n := p.Number
	if n < 1 {
		n = 1
	}
	if n > MaxPage {
		n = MaxPage
	}
	return PerPage, (n - 1) * PerPage
}

// where accumulates AND-ed conditions with their positional args.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) owner(prefix string, ref *model.OwnerRef) {
	if ref == nil {
		return
	}
	w.add(prefix+"_kind = ? AND "+prefix+"_id = ?", string(ref.Kind), ref.ID)
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

// scanOwner rebuilds an owner reference from its two columns.
func scanOwner(kind string, id uint64) (model.OwnerRef, error) {
	k, err := model.ParseActorKind(kind)
	if err != nil {
		return model.OwnerRef{}, err
	}
	return model.NewOwnerRef(k, id)
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
