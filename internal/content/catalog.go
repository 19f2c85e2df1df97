// Package content describes the administrable entities and serves point
// lookups over them.
package content

import (
	"sort"

	"github.com/lumen-ngo/lumen/internal/roles"
)

// Kind is the value type a mutable field accepts.
type Kind int

const (
	KindBool Kind = iota + 1
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Field is a column that can be changed in bulk.
type Field struct {
	Name       string
	Column     string
	Kind       Kind
	Allowed    []string
	Permission roles.Permission
}

// Accepts reports whether v is a valid value for the field. JSON decoding
// yields bool and string for the supported kinds.
func (f Field) Accepts(v any) bool {
	switch f.Kind {
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindString:
		s, ok := v.(string)
		if !ok {
			return false
		}
		if len(f.Allowed) == 0 {
			return true
		}
		for _, a := range f.Allowed {
			if a == s {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Entity is an administrable table.
type Entity struct {
	Name           string
	Table          string
	ViewPermission roles.Permission
	Fields         map[string]Field
	// Hidden columns are never returned by lookups.
	Hidden []string
}

// Field returns the named mutable field.
func (e Entity) Field(name string) (Field, bool) {
	f, ok := e.Fields[name]
	return f, ok
}

// FieldNames lists the mutable fields in name order.
func (e Entity) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog is the fixed set of entities. It is read-only after construction.
type Catalog struct {
	entities map[string]Entity
	ordered  []string
}

// NewCatalog returns the catalog of administrable entities.
func NewCatalog() *Catalog {
	active := boolField("isActive", "is_active", roles.PermContentManage)
	featured := boolField("isFeatured", "is_featured", roles.PermContentPublish)
	published := boolField("isPublished", "is_published", roles.PermContentPublish)

	defs := []Entity{
		contentEntity("news", active, featured, published),
		contentEntity("events", active, featured, published),
		contentEntity("galleries", active, featured),
		contentEntity("stories", active, featured, published),
		contentEntity("allies", active, featured),
		contentEntity("resources", active, published),
		{
			Name:           "donations",
			Table:          "donations",
			ViewPermission: roles.PermDonationsView,
			Fields: fields(
				Field{Name: "status", Column: "status", Kind: KindString, Allowed: []string{"PENDING", "CONFIRMED", "CANCELLED"}, Permission: roles.PermDonationsManage},
			),
		},
		{
			Name:           "complaints",
			Table:          "complaints",
			ViewPermission: roles.PermComplaintsView,
			Fields: fields(
				boolField("isResolved", "is_resolved", roles.PermComplaintsManage),
			),
		},
		{
			Name:           "users",
			Table:          "users",
			ViewPermission: roles.PermUsersView,
			Fields: fields(
				boolField("isActive", "is_active", roles.PermUsersManage),
				boolField("mustChangePassword", "must_change_password", roles.PermUsersManage),
			),
			Hidden: []string{"password_hash"},
		},
	}

	c := &Catalog{entities: make(map[string]Entity, len(defs))}
	for _, def := range defs {
		c.entities[def.Name] = def
		c.ordered = append(c.ordered, def.Name)
	}
	sort.Strings(c.ordered)
	return c
}

func contentEntity(name string, fs ...Field) Entity {
	return Entity{Name: name, Table: name, ViewPermission: roles.PermContentView, Fields: fields(fs...)}
}

func boolField(name, column string, perm roles.Permission) Field {
	return Field{Name: name, Column: column, Kind: KindBool, Permission: perm}
}

func fields(fs ...Field) map[string]Field {
	out := make(map[string]Field, len(fs))
	for _, f := range fs {
		out[f.Name] = f
	}
	return out
}

// Entity returns the named entity.
func (c *Catalog) Entity(name string) (Entity, bool) {
	e, ok := c.entities[name]
	return e, ok
}

// Lookup returns the entity and field for a bulk target.
func (c *Catalog) Lookup(entity, field string) (Entity, Field, bool) {
	e, ok := c.entities[entity]
	if !ok {
		return Entity{}, Field{}, false
	}
	f, ok := e.Field(field)
	if !ok {
		return Entity{}, Field{}, false
	}
	return e, f, true
}

// Names lists entity names alphabetically.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.ordered))
	copy(out, c.ordered)
	return out
}
