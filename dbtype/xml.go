package dbtype

import (
	"database/sql/driver"
	"encoding/xml"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// XML PostgreSQL xml 类型，读写两侧都校验格式
type XML string

func (x XML) GormDataType() string {
	return "xml"
}

func (x XML) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "xml"
	}
	return "text"
}

func (x XML) Value() (driver.Value, error) {
	if err := validateXML(string(x)); err != nil {
		return nil, err
	}
	return string(x), nil
}

func (x *XML) Scan(value any) error {
	if value == nil {
		*x = ""
		return nil
	}

	text, err := scanText(value)
	if err != nil {
		return errors.WithMessage(err, "invalid xml")
	}
	if err := validateXML(text); err != nil {
		return err
	}
	*x = XML(text)
	return nil
}

func (x XML) String() string {
	return string(x)
}

func validateXML(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("invalid xml: empty document")
	}

	decoder := xml.NewDecoder(strings.NewReader(text))
	for {
		if _, err := decoder.Token(); err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrap(err, "invalid xml")
		}
	}
}
