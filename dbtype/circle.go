package dbtype

import (
	"database/sql/driver"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Circle PostgreSQL circle 几何类型，文本格式 <(x,y),r>
type Circle struct {
	Center Point
	Radius float64
}

func (c Circle) GormDataType() string {
	return "circle"
}

func (c Circle) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "circle"
	}
	return "text"
}

// Value 编码为 <(x,y),r>，负半径超出定义域
func (c Circle) Value() (driver.Value, error) {
	if err := checkFinite(c.Center.X, c.Center.Y, c.Radius); err != nil {
		return nil, errors.WithMessage(err, "invalid circle")
	}
	if c.Radius < 0 {
		return nil, errors.Errorf("invalid circle: negative radius %v", c.Radius)
	}
	return "<" + formatPoint(c.Center) + "," + formatFloat(c.Radius) + ">", nil
}

// Scan 解析 <(x,y),r> 文本，NULL 解析为零值
func (c *Circle) Scan(value any) error {
	if value == nil {
		*c = Circle{}
		return nil
	}

	text, err := scanText(value)
	if err != nil {
		return errors.WithMessage(err, "invalid circle")
	}

	parsed, err := parseCircle(text)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func parseCircle(text string) (Circle, error) {
	s := strings.TrimSpace(text)
	if len(s) < 2 || s[0] != '<' || s[len(s)-1] != '>' {
		return Circle{}, errors.Errorf("malformed circle: %q", text)
	}

	inner := strings.TrimSpace(s[1 : len(s)-1])
	split := strings.LastIndexByte(inner, ',')
	if split < 0 {
		return Circle{}, errors.Errorf("malformed circle: %q", text)
	}

	center, err := parsePoint(strings.TrimSpace(inner[:split]))
	if err != nil {
		return Circle{}, errors.WithMessagef(err, "malformed circle: %q", text)
	}

	radius, err := strconv.ParseFloat(strings.TrimSpace(inner[split+1:]), 64)
	if err != nil {
		return Circle{}, errors.Wrapf(err, "malformed circle: %q", text)
	}
	if radius < 0 {
		return Circle{}, errors.Errorf("malformed circle: negative radius in %q", text)
	}

	return Circle{Center: center, Radius: radius}, nil
}
