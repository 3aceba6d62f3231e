// Package metadata 负责 schema 元数据：对数据库做完整反射生成快照，
// 以及通过廉价探测计算指纹供缓存层判断新鲜度。
package metadata

import (
	"sort"
	"time"
)

// Snapshot schema 元数据快照。
// 快照要么完整（反射成功），要么不存在，不会出现部分填充后被暴露的状态。
type Snapshot struct {
	// 生成快照的数据库类型
	Driver string

	// 保存时的 schema 指纹，加载时与现场探测结果比对
	Fingerprint string

	ReflectedAt time.Time

	// 表标识到表描述的映射，Key 为 schema 限定名
	Tables map[string]*Table
}

// Table 表结构描述
type Table struct {
	Schema     string
	Name       string
	Columns    []*Column
	PrimaryKey []string
	Indexes    []*Index
}

// Column 列描述
type Column struct {
	Name         string
	DatabaseType string

	// 数据库类型名命中 dbtype 注册表时的适配器名
	Adapter string

	Nullable      bool
	HasDefault    bool
	DefaultValue  string
	Length        int64
	Precision     int64
	Scale         int64
	AutoIncrement bool
	Comment       string
}

// Index 索引描述，不含主键索引
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Empty 快照中是否没有任何表
func (s *Snapshot) Empty() bool {
	return len(s.Tables) == 0
}

// TableNames 返回排序后的表标识列表
func (s *Snapshot) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table 按标识查找表，找不到返回 nil
func (s *Snapshot) Table(name string) *Table {
	return s.Tables[name]
}

// Column 按名称查找列，找不到返回 nil
func (t *Table) Column(name string) *Column {
	for _, column := range t.Columns {
		if column.Name == name {
			return column
		}
	}
	return nil
}
