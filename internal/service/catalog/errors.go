package catalog

import (
	"errors"

	"chaincatalog/internal/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
