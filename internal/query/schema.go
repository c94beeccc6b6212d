package query

// FieldType détermine le parsing et la validation d'un filtre
type FieldType int

const (
	FieldText FieldType = iota
	FieldInt
	FieldBool
	FieldEnum
)

// Field décrit un champ exposé d'une ressource listable.
// Name est le nom JSON côté client, Column la colonne SQL.
type Field struct {
	Column     string
	Type       FieldType
	Filterable bool
	Sortable   bool
	Searchable bool
	Enum       []string // valeurs acceptées pour FieldType = FieldEnum
}

// Schema est la définition typée d'une ressource listable. Chaque ressource
// déclare ses champs une fois, le builder refuse tout paramètre hors schéma.
type Schema struct {
	Table         string
	PK            string // nom JSON de la clé primaire ("id")
	SelectColumns string // liste SQL complète, alignée sur le scanner de la ressource
	Fields        map[string]Field
	DefaultSort   string // ex: "-createdAt"
	BaseWhere     []string
}

// field retourne la définition d'un nom JSON, ok=false si hors schéma
func (s Schema) field(name string) (Field, bool) {
	f, ok := s.Fields[name]
	return f, ok
}
