package dbtype

import (
	"database/sql/driver"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Polygon PostgreSQL polygon 几何类型，文本格式 ((x1,y1),(x2,y2),...)
type Polygon []Point

func (p Polygon) GormDataType() string {
	return "polygon"
}

func (p Polygon) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "polygon"
	}
	return "text"
}

// Value 编码为 ((x1,y1),(x2,y2),...)，空多边形超出定义域
func (p Polygon) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, errors.New("invalid polygon: no vertices")
	}

	var builder strings.Builder
	builder.WriteByte('(')
	for i, point := range p {
		if err := checkFinite(point.X, point.Y); err != nil {
			return nil, errors.WithMessage(err, "invalid polygon")
		}
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(formatPoint(point))
	}
	builder.WriteByte(')')
	return builder.String(), nil
}

// Scan 解析 ((x1,y1),...) 文本，NULL 解析为 nil
func (p *Polygon) Scan(value any) error {
	if value == nil {
		*p = nil
		return nil
	}

	text, err := scanText(value)
	if err != nil {
		return errors.WithMessage(err, "invalid polygon")
	}

	parsed, err := parsePolygon(text)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func parsePolygon(text string) (Polygon, error) {
	s := strings.TrimSpace(text)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, errors.Errorf("malformed polygon: %q", text)
	}

	inner := s[1 : len(s)-1]
	var points Polygon
	for i := 0; i < len(inner); {
		switch inner[i] {
		case ',', ' ':
			i++
		case '(':
			end := strings.IndexByte(inner[i:], ')')
			if end < 0 {
				return nil, errors.Errorf("malformed polygon: %q", text)
			}
			point, err := parsePoint(inner[i : i+end+1])
			if err != nil {
				return nil, errors.WithMessagef(err, "malformed polygon: %q", text)
			}
			points = append(points, point)
			i += end + 1
		default:
			return nil, errors.Errorf("malformed polygon: %q", text)
		}
	}

	if len(points) == 0 {
		return nil, errors.Errorf("malformed polygon: %q", text)
	}
	return points, nil
}
