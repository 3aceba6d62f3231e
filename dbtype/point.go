package dbtype

import (
	"database/sql/driver"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Point PostgreSQL point 几何类型，文本格式 (x,y)
type Point struct {
	X float64
	Y float64
}

func (p Point) GormDataType() string {
	return "point"
}

// GormDBDataType 按方言返回建表类型，非 PostgreSQL 退化为文本存储
func (p Point) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "point"
	}
	return "text"
}

// Value 编码为 (x,y)
func (p Point) Value() (driver.Value, error) {
	if err := checkFinite(p.X, p.Y); err != nil {
		return nil, errors.WithMessage(err, "invalid point")
	}
	return formatPoint(p), nil
}

// Scan 解析 (x,y) 文本，NULL 解析为零值
func (p *Point) Scan(value any) error {
	if value == nil {
		*p = Point{}
		return nil
	}

	text, err := scanText(value)
	if err != nil {
		return errors.WithMessage(err, "invalid point")
	}

	parsed, err := parsePoint(text)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func formatPoint(p Point) string {
	return "(" + formatFloat(p.X) + "," + formatFloat(p.Y) + ")"
}

func parsePoint(text string) (Point, error) {
	s := strings.TrimSpace(text)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return Point{}, errors.Errorf("malformed point: %q", text)
	}

	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 2 {
		return Point{}, errors.Errorf("malformed point: %q", text)
	}

	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, errors.Wrapf(err, "malformed point: %q", text)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, errors.Wrapf(err, "malformed point: %q", text)
	}

	return Point{X: x, Y: y}, nil
}
