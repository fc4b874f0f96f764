package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/teamtask/internal/database"
	"github.com/yukikurage/teamtask/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryError reports a filter, sort or populate directive that the entity
// does not support.
type QueryError struct {
	Message string
}

func (e *QueryError) Error() string {
	return e.Message
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindBool
	kindTime
)

type field struct {
	column string
	kind   fieldKind
	// joinTable, when set, makes the field a many2many membership test:
	// <table>.id IN (SELECT joinOwner FROM joinTable WHERE column IN ?)
	joinTable string
	joinOwner string
}

type entitySchema struct {
	table           string
	fields          map[string]field
	relations       map[string]string
	defaultPopulate []string
	defaultSort     []utils.SortField
}

var (
	taskSchema = entitySchema{
		table: "project_tasks",
		fields: map[string]field{
			"id":          {column: "id", kind: kindInt},
			"title":       {column: "title"},
			"description": {column: "description"},
			"deadline":    {column: "deadline", kind: kindTime},
			"progress":    {column: "progress", kind: kindInt},
			"status":      {column: "status"},
			"createdAt":   {column: "created_at", kind: kindTime},
			"updatedAt":   {column: "updated_at", kind: kindTime},
			"owner.id":    {column: "owner_id", kind: kindInt},
			"team.id":     {column: "team_id", kind: kindInt},
		},
		relations: map[string]string{
			"owner":        "Owner",
			"team":         "Team",
			"workPackages": "WorkPackages",
		},
		defaultPopulate: []string{"owner", "team", "workPackages"},
		defaultSort:     []utils.SortField{{Field: "createdAt", Desc: true}},
	}

	teamSchema = entitySchema{
		table: "teams",
		fields: map[string]field{
			"id":          {column: "id", kind: kindInt},
			"name":        {column: "name"},
			"description": {column: "description"},
			"createdAt":   {column: "created_at", kind: kindTime},
			"updatedAt":   {column: "updated_at", kind: kindTime},
			"leader.id":   {column: "leader_id", kind: kindInt},
			"members.id":  {column: "user_id", kind: kindInt, joinTable: "team_members", joinOwner: "team_id"},
		},
		relations: map[string]string{
			"members":       "Members",
			"leader":        "Leader",
			"project_tasks": "Tasks",
			"tasks":         "Tasks",
		},
		defaultPopulate: []string{"members", "leader"},
		defaultSort:     []utils.SortField{{Field: "createdAt", Desc: true}},
	}

	workPackageSchema = entitySchema{
		table: "work_packages",
		fields: map[string]field{
			"id":              {column: "id", kind: kindInt},
			"name":            {column: "name"},
			"percentage":      {column: "percentage", kind: kindInt},
			"deadline":        {column: "deadline", kind: kindTime},
			"status":          {column: "status"},
			"createdAt":       {column: "created_at", kind: kindTime},
			"updatedAt":       {column: "updated_at", kind: kindTime},
			"project_task.id": {column: "project_task_id", kind: kindInt},
		},
		relations: map[string]string{
			"project_task": "ProjectTask",
		},
		defaultPopulate: []string{"project_task"},
		defaultSort:     []utils.SortField{{Field: "createdAt", Desc: false}},
	}

	notificationSchema = entitySchema{
		table: "notifications",
		fields: map[string]field{
			"id":        {column: "id", kind: kindInt},
			"title":     {column: "title"},
			"message":   {column: "message"},
			"type":      {column: "type"},
			"read":      {column: "read", kind: kindBool},
			"createdAt": {column: "created_at", kind: kindTime},
			"updatedAt": {column: "updated_at", kind: kindTime},
			"user.id":   {column: "user_id", kind: kindInt},
		},
		relations: map[string]string{
			"user": "User",
		},
		defaultPopulate: []string{"user"},
		defaultSort:     []utils.SortField{{Field: "createdAt", Desc: true}},
	}

	userSchema = entitySchema{
		table: "users",
		fields: map[string]field{
			"id":        {column: "id", kind: kindInt},
			"username":  {column: "username"},
			"email":     {column: "email"},
			"role":      {column: "role"},
			"createdAt": {column: "created_at", kind: kindTime},
			"teams.id":  {column: "team_id", kind: kindInt, joinTable: "team_members", joinOwner: "user_id"},
		},
		relations: map[string]string{
			"teams": "Teams",
			// role is a column, populate=role is accepted and ignored
			"role": "",
		},
		defaultSort: []utils.SortField{{Field: "id"}},
	}
)

func (s entitySchema) column(name string) clause.Column {
	return clause.Column{Table: s.table, Name: name}
}

// applyFilters narrows db with the whitelisted filters.
func (s entitySchema) applyFilters(db *gorm.DB, filters []utils.Filter) (*gorm.DB, error) {
	for _, f := range filters {
		fd, ok := s.fields[f.Field()]
		if !ok {
			return nil, &QueryError{Message: fmt.Sprintf("Invalid key %s", f.Field())}
		}

		expr, err := s.filterExpression(fd, f)
		if err != nil {
			return nil, err
		}
		db = db.Where(expr)
	}
	return db, nil
}

func (s entitySchema) filterExpression(fd field, f utils.Filter) (clause.Expression, error) {
	col := s.column(fd.column)

	if f.Operator == utils.OpNull || f.Operator == utils.OpNotNull {
		isNull, err := strconv.ParseBool(f.Values[0])
		if err != nil {
			return nil, &QueryError{Message: fmt.Sprintf("Invalid value for %s", f.Field())}
		}
		if f.Operator == utils.OpNotNull {
			isNull = !isNull
		}
		if isNull {
			return clause.Expr{SQL: "? IS NULL", Vars: []interface{}{col}}, nil
		}
		return clause.Expr{SQL: "? IS NOT NULL", Vars: []interface{}{col}}, nil
	}

	values := make([]interface{}, len(f.Values))
	for i, raw := range f.Values {
		v, err := convertValue(fd.kind, raw)
		if err != nil {
			return nil, &QueryError{Message: fmt.Sprintf("Invalid value for %s", f.Field())}
		}
		values[i] = v
	}

	if fd.joinTable != "" {
		if f.Operator != utils.OpEq && f.Operator != utils.OpIn {
			return nil, &QueryError{Message: fmt.Sprintf("Invalid operator %s for %s", f.Operator, f.Field())}
		}
		return clause.Expr{
			SQL: "? IN (SELECT ? FROM ? WHERE ? IN ?)",
			Vars: []interface{}{
				s.column("id"),
				clause.Column{Name: fd.joinOwner},
				clause.Table{Name: fd.joinTable},
				clause.Column{Name: fd.column},
				values,
			},
		}, nil
	}

	switch f.Operator {
	case utils.OpEq:
		return clause.Eq{Column: col, Value: values[0]}, nil
	case utils.OpNe:
		return clause.Neq{Column: col, Value: values[0]}, nil
	case utils.OpLt:
		return clause.Lt{Column: col, Value: values[0]}, nil
	case utils.OpLte:
		return clause.Lte{Column: col, Value: values[0]}, nil
	case utils.OpGt:
		return clause.Gt{Column: col, Value: values[0]}, nil
	case utils.OpGte:
		return clause.Gte{Column: col, Value: values[0]}, nil
	case utils.OpIn:
		return clause.IN{Column: col, Values: values}, nil
	case utils.OpContains:
		if fd.kind != kindString {
			break
		}
		return clause.Like{Column: col, Value: "%" + f.Values[0] + "%"}, nil
	case utils.OpContainsi:
		if fd.kind != kindString {
			break
		}
		return clause.Expr{
			SQL:  "LOWER(?) LIKE ?",
			Vars: []interface{}{col, "%" + strings.ToLower(f.Values[0]) + "%"},
		}, nil
	}

	return nil, &QueryError{Message: fmt.Sprintf("Invalid operator %s for %s", f.Operator, f.Field())}
}

// applySort orders db by the requested fields, or the entity default.
func (s entitySchema) applySort(db *gorm.DB, fields []utils.SortField) (*gorm.DB, error) {
	if len(fields) == 0 {
		fields = s.defaultSort
	}
	for _, sf := range fields {
		fd, ok := s.fields[sf.Field]
		if !ok || fd.joinTable != "" {
			return nil, &QueryError{Message: fmt.Sprintf("Invalid sort key %s", sf.Field)}
		}
		db = db.Order(clause.OrderByColumn{Column: s.column(fd.column), Desc: sf.Desc})
	}
	// Stable order between pages.
	return db.Order(clause.OrderByColumn{Column: s.column("id")}), nil
}

// applyPopulate preloads the default relations plus any requested ones.
func (s entitySchema) applyPopulate(db *gorm.DB, requested []string) (*gorm.DB, error) {
	seen := make(map[string]struct{})
	for _, name := range append(append([]string(nil), s.defaultPopulate...), requested...) {
		if name == "*" {
			for rel := range s.relations {
				if _, done := seen[rel]; !done {
					db = s.preload(db, rel, seen)
				}
			}
			continue
		}
		if _, ok := s.relations[name]; !ok {
			return nil, &QueryError{Message: fmt.Sprintf("Invalid populate field %s", name)}
		}
		db = s.preload(db, name, seen)
	}
	return db, nil
}

func (s entitySchema) preload(db *gorm.DB, name string, seen map[string]struct{}) *gorm.DB {
	target := s.relations[name]
	if target == "" {
		return db
	}
	if _, done := seen[target]; done {
		return db
	}
	seen[target] = struct{}{}
	return db.Preload(target)
}

func convertValue(kind fieldKind, raw string) (interface{}, error) {
	switch kind {
	case kindInt:
		return strconv.ParseInt(raw, 10, 64)
	case kindBool:
		return strconv.ParseBool(raw)
	case kindTime:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", raw)
	default:
		return raw, nil
	}
}

// list runs a filtered, sorted, paginated query for T with relations preloaded.
// scope, when set, restricts the result set before client filters apply.
func list[T any](db *gorm.DB, schema entitySchema, q utils.ListQuery, scope func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	query := db.Model(new(T))
	if scope != nil {
		query = scope(query)
	}

	query, err := schema.applyFilters(query, q.Filters)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery, err := schema.applySort(query.Session(&gorm.Session{}), q.Sort)
	if err != nil {
		return nil, 0, err
	}
	listQuery, err = schema.applyPopulate(listQuery, q.Populate)
	if err != nil {
		return nil, 0, err
	}

	items := make([]T, 0)
	if err := listQuery.Scopes(database.Paginate(q.Pagination)).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// findOne loads a single T by id with the default relations preloaded.
func findOne[T any](db *gorm.DB, schema entitySchema, id uint64, populate []string) (*T, error) {
	query, err := schema.applyPopulate(db, populate)
	if err != nil {
		return nil, err
	}

	var item T
	if err := query.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}
