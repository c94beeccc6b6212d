package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userSchema() Schema {
	return Schema{
		Table:         "users",
		PK:            "id",
		SelectColumns: "id, email, role, status, created_at",
		Fields: map[string]Field{
			"id":        {Column: "id", Type: FieldText},
			"email":     {Column: "email", Type: FieldText, Filterable: true, Searchable: true, Sortable: true},
			"role":      {Column: "role", Type: FieldEnum, Filterable: true, Enum: []string{"ADMIN", "FOUNDER", "SEEDER"}},
			"status":    {Column: "status", Type: FieldEnum, Filterable: true, Enum: []string{"ACTIVE", "RESTRICTED"}},
			"createdAt": {Column: "created_at", Sortable: true},
		},
		DefaultSort: "-createdAt",
		BaseWhere:   []string{"is_deleted = false"},
	}
}

func TestPaginationDefaults(t *testing.T) {
	b := New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{}))

	assert.Equal(t, 1, b.page)
	assert.Equal(t, 10, b.limit)
	assert.Equal(t, 0, b.Offset())
}

func TestPaginationOffset(t *testing.T) {
	b := New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{"page": {"2"}, "limit": {"10"}}))

	// page=2 limit=10 saute exactement les 10 premiers
	assert.Equal(t, 10, b.Offset())

	dataSQL, _, dataArgs, _ := b.Build()
	assert.Contains(t, dataSQL, "LIMIT $1 OFFSET $2")
	assert.Equal(t, []interface{}{10, 10}, dataArgs)
}

func TestPaginationInvalid(t *testing.T) {
	b := New(userSchema())
	err := b.FromQuery(url.Values{"page": {"zero"}})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	b = New(userSchema())
	err = b.FromQuery(url.Values{"limit": {"-5"}})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestDefaultSort(t *testing.T) {
	b := New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{}))

	dataSQL, _, _, _ := b.Build()
	assert.Contains(t, dataSQL, "ORDER BY created_at DESC")
}

func TestExplicitSortAscending(t *testing.T) {
	b := New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{"sort": {"email"}}))

	dataSQL, _, _, _ := b.Build()
	assert.Contains(t, dataSQL, "ORDER BY email ASC")
}

func TestSortUnknownFieldRejected(t *testing.T) {
	b := New(userSchema())
	err := b.FromQuery(url.Values{"sort": {"-password"}})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestRoleMembershipFilter(t *testing.T) {
	b := New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{"role": {"FOUNDER,SEEDER"}}))

	_, countSQL, _, countArgs := b.Build()
	assert.Contains(t, countSQL, "role IN ($1, $2)")
	assert.Equal(t, []interface{}{"FOUNDER", "SEEDER"}, countArgs)
}

func TestRoleInvalidValueRejected(t *testing.T) {
	b := New(userSchema())
	err := b.FromQuery(url.Values{"role": {"FOUNDER,WIZARD"}})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestUnknownFilterRejected(t *testing.T) {
	b := New(userSchema())
	err := b.FromQuery(url.Values{"password": {"secret"}})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestReservedParamsNotFilters(t *testing.T) {
	b := New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{
		"searchTerm": {"alice"},
		"sort":       {"email"},
		"page":       {"1"},
		"limit":      {"5"},
		"fields":     {"email"},
		"exclude":    {"status"},
	}))

	_, countSQL, _, _ := b.Build()
	// searchTerm produit un ILIKE, pas une égalité
	assert.Contains(t, countSQL, "email ILIKE $1")
	assert.NotContains(t, countSQL, "searchTerm")
	assert.NotContains(t, countSQL, "fields")
}

func TestBaseWhereAlwaysApplied(t *testing.T) {
	b := New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{}))

	dataSQL, countSQL, _, _ := b.Build()
	assert.Contains(t, dataSQL, "is_deleted = false")
	assert.Contains(t, countSQL, "is_deleted = false")
}

func TestWherefPlaceholders(t *testing.T) {
	b := New(userSchema())
	b.Wheref("founder_id = ?", "f-1")
	require.NoError(t, b.FromQuery(url.Values{"status": {"ACTIVE"}}))

	_, countSQL, _, countArgs := b.Build()
	assert.Contains(t, countSQL, "founder_id = $1")
	assert.Contains(t, countSQL, "status IN ($2)")
	assert.Equal(t, []interface{}{"f-1", "ACTIVE"}, countArgs)
}

func TestMeta(t *testing.T) {
	b := New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{"page": {"2"}, "limit": {"10"}}))

	meta := b.Meta(35)
	assert.Equal(t, Meta{Page: 2, Limit: 10, Total: 35, TotalPage: 4}, meta)

	assert.Equal(t, 0, b.Meta(0).TotalPage)
}

type projectable struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

func TestProjectionFields(t *testing.T) {
	b := New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{"fields": {"email"}}))

	m, err := b.Project(projectable{ID: "u-1", Email: "a@b.c", Status: "ACTIVE"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"email": "a@b.c"}, m)
}

func TestProjectionKeepsExplicitPK(t *testing.T) {
	b := New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{"fields": {"id,email"}}))

	m, err := b.Project(projectable{ID: "u-1", Email: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", m["id"])
	assert.Equal(t, "a@b.c", m["email"])
}

func TestProjectionEmptySelectionStripsForcedPK(t *testing.T) {
	// Aucun champ demandé n'existe: la PK est forcée pour garder la ligne
	// exploitable, puis retirée puisqu'elle n'était pas demandée
	b := New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{"fields": {"nonexistent"}}))

	m, err := b.Project(projectable{ID: "u-1", Email: "a@b.c"})
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestProjectionExclude(t *testing.T) {
	b := New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{"exclude": {"status"}}))

	m, err := b.Project(projectable{ID: "u-1", Email: "a@b.c", Status: "ACTIVE"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", m["id"])
	assert.NotContains(t, m, "status")
}

func TestProjectionExcludeEverythingKeepsPK(t *testing.T) {
	// Un exclude couvrant toutes les colonnes, id compris, ne doit pas
	// produire de lignes vides: la colonne d'identité survit
	b := New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{"exclude": {"id,email,status"}}))

	m, err := b.Project(projectable{ID: "u-1", Email: "a@b.c", Status: "ACTIVE"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"id": "u-1"}, m)
}

func TestSearchTermEscapesLikeMetacharacters(t *testing.T) {
	b := New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{"searchTerm": {`100%_a\b`}}))

	_, _, _, countArgs := b.Build()
	require.Len(t, countArgs, 1)
	// Un % littéral dans le terme ne doit pas agir comme joker
	assert.Equal(t, `%100\%\_a\\b%`, countArgs[0])
}

func TestHasProjection(t *testing.T) {
	b := New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{}))
	assert.False(t, b.HasProjection())

	b = New(userSchema())
	require.NoError(t, b.FromQuery(url.Values{"fields": {"email"}}))
	assert.True(t, b.HasProjection())
}
