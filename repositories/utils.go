package repositories

import (
	"fmt"

	"github.com/openbankly/consent-backend/pure_utils"
)

func columnsNames(tableAlias string, fields []string) []string {
	return pure_utils.Map(fields, func(f string) string {
		return fmt.Sprintf("%s.%s", tableAlias, f)
	})
}
