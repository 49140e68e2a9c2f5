package evaluator

import (
	"database/sql"
	"math"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/funvibe/zephyr/internal/config"
)

const sqliteDriver = "sqlite"

// databases holds the connections opened by db_open, keyed by the
// numeric handle scripts see.
type databases struct {
	next  int
	conns map[int]*sql.DB
}

func newDatabases() *databases {
	return &databases{conns: make(map[int]*sql.DB)}
}

func (d *databases) open(path string) (int, error) {
	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return 0, errors.Wrapf(err, "opening %s", path)
	}
	// One connection, so ":memory:" databases are shared by every call.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return 0, errors.Wrapf(err, "opening %s", path)
	}
	d.next++
	d.conns[d.next] = db
	return d.next, nil
}

func (d *databases) get(handle float64) (*sql.DB, error) {
	db, ok := d.conns[int(handle)]
	if !ok || handle != math.Trunc(handle) {
		return nil, newError(InvalidKey, "no open database with handle %s", formatNumber(handle))
	}
	return db, nil
}

func (d *databases) close(handle int) error {
	db, ok := d.conns[handle]
	if !ok {
		return nil
	}
	delete(d.conns, handle)
	return db.Close()
}

func (d *databases) closeAll() error {
	var first error
	for h := range d.conns {
		if err := d.close(h); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// statement reads the handle, the SQL text and the bound parameters of a
// db_exec or db_query call.
func (c *NativeContext) statement(name string) (*sql.DB, string, []interface{}, error) {
	handle, err := c.number(0, name)
	if err != nil {
		return nil, "", nil, err
	}
	db, err := c.Interp.dbs.get(handle)
	if err != nil {
		return nil, "", nil, err
	}
	query, err := c.str(1, name)
	if err != nil {
		return nil, "", nil, err
	}
	var params []interface{}
	for _, a := range c.Args[min(2, len(c.Args)):] {
		p, err := sqlParam(c.Interp, a)
		if err != nil {
			return nil, "", nil, err
		}
		params = append(params, p)
	}
	return db, query, params, nil
}

func sqlParam(e *Evaluator, v Value) (interface{}, error) {
	v, uerr := e.unexport(v)
	if uerr != nil {
		return nil, uerr
	}
	target, err := e.deref(v)
	if err != nil {
		return nil, err
	}
	switch t := target.(type) {
	case *Null:
		return nil, nil
	case *Boolean:
		return t.Value, nil
	case *String:
		return t.Value, nil
	case *Number:
		if t.Value == math.Trunc(t.Value) && math.Abs(t.Value) < 1<<53 {
			return int64(t.Value), nil
		}
		return t.Value, nil
	}
	return nil, newError(TypeError, "a %s cannot be bound as a query parameter", target.TypeName())
}

func builtinDBOpen(c *NativeContext) (Value, error) {
	path, err := c.str(0, config.DBOpenFuncName)
	if err != nil {
		return nil, err
	}
	h, err := c.Interp.dbs.open(path)
	if err != nil {
		return nil, newError(CannotResolve, "%v", err)
	}
	c.Interp.logger.Debug("database opened", "path", path, "handle", h)
	return NewNumber(float64(h)), nil
}

// builtinDBExec runs a statement and returns .{ rows_affected, last_insert_id }.
func builtinDBExec(c *NativeContext) (Value, error) {
	db, query, params, err := c.statement(config.DBExecFuncName)
	if err != nil {
		return nil, err
	}
	res, err := db.ExecContext(c.Interp.ctx, query, params...)
	if err != nil {
		return nil, newError(InvalidOperation, "%v", err)
	}
	obj := NewObject()
	if n, err := res.RowsAffected(); err == nil {
		obj.Set("rows_affected", NewNumber(float64(n)))
	}
	if id, err := res.LastInsertId(); err == nil {
		obj.Set("last_insert_id", NewNumber(float64(id)))
	}
	return c.Interp.allocate(obj), nil
}

// builtinDBQuery returns the rows as an array of objects whose keys follow
// the column order.
func builtinDBQuery(c *NativeContext) (Value, error) {
	db, query, params, err := c.statement(config.DBQueryFuncName)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(c.Interp.ctx, query, params...)
	if err != nil {
		return nil, newError(InvalidOperation, "%v", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, newError(InvalidOperation, "%v", err)
	}
	var out []Value
	for rows.Next() {
		cells := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, newError(InvalidOperation, "%v", err)
		}
		obj := NewObject()
		for i, col := range cols {
			obj.Set(col, sqlValue(cells[i]))
		}
		out = append(out, c.Interp.allocate(obj))
	}
	if err := rows.Err(); err != nil {
		return nil, newError(InvalidOperation, "%v", err)
	}
	return c.Interp.allocate(NewArray(out)), nil
}

func sqlValue(cell interface{}) Value {
	switch v := cell.(type) {
	case int64:
		return NewNumber(float64(v))
	case float64:
		return NewNumber(v)
	case bool:
		return NewBoolean(v)
	case string:
		return NewString(v)
	case []byte:
		return NewString(string(v))
	case time.Time:
		return NewString(v.Format(time.RFC3339))
	}
	return NewNull()
}

func builtinDBClose(c *NativeContext) (Value, error) {
	handle, err := c.number(0, config.DBCloseFuncName)
	if err != nil {
		return nil, err
	}
	if _, err := c.Interp.dbs.get(handle); err != nil {
		return nil, err
	}
	if err := c.Interp.dbs.close(int(handle)); err != nil {
		return nil, newError(InvalidOperation, "%v", err)
	}
	return NewNull(), nil
}
