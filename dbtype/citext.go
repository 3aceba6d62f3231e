package dbtype

import (
	"database/sql/driver"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// CIText 大小写不敏感文本，PostgreSQL 对应 citext 扩展类型
type CIText string

func (t CIText) GormDataType() string {
	return "citext"
}

// GormDBDataType PostgreSQL 使用 citext，SQLite 用 NOCASE 排序规则，其余退化为文本
func (t CIText) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "citext"
	case "sqlite":
		return "text COLLATE NOCASE"
	}
	return "text"
}

func (t CIText) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *CIText) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	text, err := scanText(value)
	if err != nil {
		return errors.WithMessage(err, "invalid citext")
	}
	*t = CIText(text)
	return nil
}

func (t CIText) String() string {
	return string(t)
}

// Equal 大小写不敏感比较
func (t CIText) Equal(other CIText) bool {
	return strings.EqualFold(string(t), string(other))
}
