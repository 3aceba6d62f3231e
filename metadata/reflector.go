package metadata

import (
	"context"
	"time"

	"github.com/hatlonely/dbx"
	"github.com/hatlonely/dbx/dbtype"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Reflect 对数据库做一次完整反射，生成快照。
// 零张表返回空快照而不是错误，是否严格由调用方决定。
// 反射中途失败时整体失败，不返回部分填充的快照。
func Reflect(ctx context.Context, db *gorm.DB, driver dbx.Driver) (*Snapshot, error) {
	migrator := db.WithContext(ctx).Migrator()

	tables, err := migrator.GetTables()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tables")
	}

	snapshot := &Snapshot{
		Driver:      driver.String(),
		ReflectedAt: time.Now(),
		Tables:      make(map[string]*Table, len(tables)),
	}

	for _, name := range tables {
		table, err := reflectTable(migrator, driver, name)
		if err != nil {
			return nil, err
		}
		snapshot.Tables[name] = table
	}

	return snapshot, nil
}

func reflectTable(migrator gorm.Migrator, driver dbx.Driver, name string) (*Table, error) {
	columnTypes, err := migrator.ColumnTypes(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to reflect columns of table %s", name)
	}

	table := &Table{Name: name}
	for _, columnType := range columnTypes {
		column := &Column{
			Name:         columnType.Name(),
			DatabaseType: columnType.DatabaseTypeName(),
		}
		if nullable, ok := columnType.Nullable(); ok {
			column.Nullable = nullable
		}
		if value, ok := columnType.DefaultValue(); ok {
			column.HasDefault = true
			column.DefaultValue = value
		}
		if length, ok := columnType.Length(); ok {
			column.Length = length
		}
		if precision, scale, ok := columnType.DecimalSize(); ok {
			column.Precision = precision
			column.Scale = scale
		}
		if autoIncrement, ok := columnType.AutoIncrement(); ok {
			column.AutoIncrement = autoIncrement
		}
		if comment, ok := columnType.Comment(); ok {
			column.Comment = comment
		}
		if isPrimaryKey, ok := columnType.PrimaryKey(); ok && isPrimaryKey {
			table.PrimaryKey = append(table.PrimaryKey, column.Name)
		}
		if adapter, ok := dbtype.Lookup(driver, column.DatabaseType); ok {
			column.Adapter = adapter
		}

		table.Columns = append(table.Columns, column)
	}

	indexes, err := migrator.GetIndexes(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to reflect indexes of table %s", name)
	}
	for _, index := range indexes {
		if isPrimaryKey, ok := index.PrimaryKey(); ok && isPrimaryKey {
			continue
		}
		unique, _ := index.Unique()
		table.Indexes = append(table.Indexes, &Index{
			Name:    index.Name(),
			Columns: index.Columns(),
			Unique:  unique,
		})
	}

	return table, nil
}
