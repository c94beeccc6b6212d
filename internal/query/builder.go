package query

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Paramètres réservés, jamais traités comme filtres
var reservedParams = map[string]bool{
	"searchTerm": true,
	"sort":       true,
	"page":       true,
	"limit":      true,
	"fields":     true,
	"exclude":    true,
}

const (
	defaultPage  = 1
	defaultLimit = 10
)

// ValidationError signale un paramètre de requête invalide (HTTP 400)
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, v ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, v...)}
}

// IsValidation distingue une erreur client d'une erreur serveur
func IsValidation(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// Meta est le bloc de pagination accompagnant chaque liste
type Meta struct {
	Page      int `json:"page"`
	Limit     int `json:"limit"`
	Total     int `json:"total"`
	TotalPage int `json:"totalPage"`
}

// Builder assemble la requête SQL d'un listing à partir du schéma typé
// de la ressource et des paramètres d'URL.
type Builder struct {
	schema Schema

	where []string
	args  []interface{}

	orderBy string
	page    int
	limit   int

	fields  []string
	exclude []string
}

func New(schema Schema) *Builder {
	return &Builder{
		schema:  schema,
		where:   append([]string{}, schema.BaseWhere...),
		page:    defaultPage,
		limit:   defaultLimit,
		orderBy: "",
	}
}

// Wheref ajoute une condition fixe. Les ? sont remplacés par des
// placeholders $n numérotés à la construction.
func (b *Builder) Wheref(cond string, args ...interface{}) *Builder {
	for _, a := range args {
		b.args = append(b.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(b.args)), 1)
	}
	b.where = append(b.where, cond)
	return b
}

// FromQuery applique searchTerm, filtres, tri, pagination et projection
// depuis les paramètres d'URL. Tout paramètre hors schéma est rejeté.
func (b *Builder) FromQuery(values url.Values) error {
	if term := values.Get("searchTerm"); term != "" {
		b.applySearch(term)
	}

	// Noms triés pour une numérotation de placeholders stable
	names := make([]string, 0, len(values))
	for name := range values {
		if reservedParams[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := b.applyFilter(name, values.Get(name)); err != nil {
			return err
		}
	}

	if err := b.applySort(values.Get("sort")); err != nil {
		return err
	}
	if err := b.applyPagination(values.Get("page"), values.Get("limit")); err != nil {
		return err
	}

	if raw := values.Get("fields"); raw != "" {
		b.fields = splitClean(raw)
	}
	if raw := values.Get("exclude"); raw != "" {
		b.exclude = splitClean(raw)
	}

	return nil
}

func (b *Builder) applySearch(term string) {
	var columns []string
	for _, f := range b.schema.Fields {
		if f.Searchable {
			columns = append(columns, f.Column)
		}
	}
	if len(columns) == 0 {
		return
	}
	sort.Strings(columns)

	// Les métacaractères LIKE du terme sont pris au pied de la lettre
	pattern := "%" + likeEscaper.Replace(term) + "%"
	conds := make([]string, 0, len(columns))
	for _, col := range columns {
		b.args = append(b.args, pattern)
		conds = append(conds, fmt.Sprintf("%s ILIKE $%d", col, len(b.args)))
	}
	b.where = append(b.where, "("+strings.Join(conds, " OR ")+")")
}

func (b *Builder) applyFilter(name, value string) error {
	f, ok := b.schema.field(name)
	if !ok || !f.Filterable {
		return validationf("unknown filter: %s", name)
	}

	switch f.Type {
	case FieldEnum:
		// Les valeurs multiples (a,b) deviennent une appartenance IN,
		// chaque valeur est validée contre l'énumération du schéma
		parts := splitClean(value)
		if len(parts) == 0 {
			return validationf("empty value for filter %s", name)
		}
		placeholders := make([]string, 0, len(parts))
		for _, p := range parts {
			if !contains(f.Enum, p) {
				return validationf("invalid value %q for filter %s", p, name)
			}
			b.args = append(b.args, p)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(b.args)))
		}
		b.where = append(b.where, fmt.Sprintf("%s IN (%s)", f.Column, strings.Join(placeholders, ", ")))

	case FieldBool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return validationf("invalid boolean %q for filter %s", value, name)
		}
		b.args = append(b.args, v)
		b.where = append(b.where, fmt.Sprintf("%s = $%d", f.Column, len(b.args)))

	case FieldInt:
		v, err := strconv.Atoi(value)
		if err != nil {
			return validationf("invalid number %q for filter %s", value, name)
		}
		b.args = append(b.args, v)
		b.where = append(b.where, fmt.Sprintf("%s = $%d", f.Column, len(b.args)))

	default:
		b.args = append(b.args, value)
		b.where = append(b.where, fmt.Sprintf("%s = $%d", f.Column, len(b.args)))
	}

	return nil
}

func (b *Builder) applySort(raw string) error {
	if raw == "" {
		raw = b.schema.DefaultSort
	}
	if raw == "" {
		return nil
	}

	var clauses []string
	for _, part := range splitClean(raw) {
		dir := "ASC"
		name := part
		if strings.HasPrefix(part, "-") {
			dir = "DESC"
			name = part[1:]
		}
		f, ok := b.schema.field(name)
		if !ok || !f.Sortable {
			return validationf("invalid sort field: %s", name)
		}
		clauses = append(clauses, f.Column+" "+dir)
	}
	b.orderBy = strings.Join(clauses, ", ")
	return nil
}

func (b *Builder) applyPagination(pageRaw, limitRaw string) error {
	if pageRaw != "" {
		page, err := strconv.Atoi(pageRaw)
		if err != nil || page < 1 {
			return validationf("invalid page: %s", pageRaw)
		}
		b.page = page
	}
	if limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil || limit < 1 {
			return validationf("invalid limit: %s", limitRaw)
		}
		b.limit = limit
	}
	return nil
}

// Offset retourne le décalage (page-1)*limit
func (b *Builder) Offset() int {
	return (b.page - 1) * b.limit
}

// Build retourne la requête de données, la requête de comptage et leurs args.
// Le comptage réutilise le WHERE mais ignore tri et pagination.
func (b *Builder) Build() (dataSQL, countSQL string, dataArgs, countArgs []interface{}) {
	whereClause := ""
	if len(b.where) > 0 {
		whereClause = " WHERE " + strings.Join(b.where, " AND ")
	}

	countSQL = "SELECT COUNT(*) FROM " + b.schema.Table + whereClause
	countArgs = b.args

	dataSQL = "SELECT " + b.schema.SelectColumns + " FROM " + b.schema.Table + whereClause
	if b.orderBy != "" {
		dataSQL += " ORDER BY " + b.orderBy
	}
	dataArgs = append(append([]interface{}{}, b.args...), b.limit, b.Offset())
	dataSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(b.args)+1, len(b.args)+2)

	return dataSQL, countSQL, dataArgs, countArgs
}

// Meta construit le bloc de pagination à partir du total compté
func (b *Builder) Meta(total int) Meta {
	totalPage := 0
	if b.limit > 0 {
		totalPage = (total + b.limit - 1) / b.limit
	}
	return Meta{Page: b.page, Limit: b.limit, Total: total, TotalPage: totalPage}
}

// Execute lance la requête de données et le comptage en parallèle.
// scan convertit chaque ligne, rowScanner couvre pgx.Rows.
func Execute[T any](ctx context.Context, db *pgxpool.Pool, b *Builder,
	scan func(interface{ Scan(dest ...interface{}) error }) (T, error)) ([]T, Meta, error) {

	dataSQL, countSQL, dataArgs, countArgs := b.Build()

	var items []T
	var total int

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := db.Query(gctx, dataSQL, dataArgs...)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			items = append(items, item)
		}
		return rows.Err()
	})

	g.Go(func() error {
		if err := db.QueryRow(gctx, countSQL, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("count failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, Meta{}, err
	}

	if items == nil {
		items = []T{}
	}
	return items, b.Meta(total), nil
}

// HasProjection indique si fields ou exclude ont été demandés
func (b *Builder) HasProjection() bool {
	return len(b.fields) > 0 || len(b.exclude) > 0
}

// Project applique fields/exclude sur la représentation JSON d'un élément.
// Si la sélection explicite vide l'objet, la PK est forcée pour garder une
// ligne exploitable, puis retirée du résultat si elle n'était pas demandée.
func (b *Builder) Project(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}

	pk := b.schema.PK
	pkVal, pkSeen := m[pk]

	if len(b.fields) > 0 {
		kept := map[string]interface{}{}
		for _, name := range b.fields {
			if val, ok := m[name]; ok {
				kept[name] = val
			}
		}
		if len(kept) == 0 {
			if val, ok := m[pk]; ok {
				kept[pk] = val
			}
		}
		if !contains(b.fields, pk) {
			delete(kept, pk)
		}
		m = kept
	}

	for _, name := range b.exclude {
		delete(m, name)
	}

	// Un exclude qui vide l'objet garde la colonne d'identité
	if len(b.exclude) > 0 && len(m) == 0 && pkSeen {
		m[pk] = pkVal
	}

	return m, nil
}

// ProjectAll applique Project sur chaque élément d'une liste
func ProjectAll[T any](b *Builder, items []T) ([]map[string]interface{}, error) {
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		m, err := b.Project(item)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func splitClean(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
