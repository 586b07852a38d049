package service

import (
	"errors"
	"fmt"

	"storefront/internal/metrics"
	"storefront/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// maxSlugAttempts bounds how often a commit is retried after losing a slug race.
const maxSlugAttempts = 3

// withSlugRetry picks a free slug for seed and hands it to persist. When
// persist fails with a unique-index violation a fresh slug is generated and
// persist runs again. persist must map duplicates that are not about the slug
// to a different error, otherwise they are retried too.
func withSlugRetry(entityName string, exists func(string) (bool, error), seed string, persist func(slug string) error) (string, error) {
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		slug, err := utils.GenerateUniqueSlug(exists, seed)
		if err != nil {
			return "", fmt.Errorf("generate slug: %w", err)
		}

		err = persist(slug)
		if err == nil {
			return slug, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", err
		}

		metrics.SlugCollisionsTotal.WithLabelValues(entityName).Inc()
		logrus.WithFields(logrus.Fields{
			"entity":  entityName,
			"slug":    slug,
			"attempt": attempt,
		}).Warn("slug taken at commit, retrying")
	}
	return "", newFieldError("slug", "Could not allocate a unique slug, please try again.")
}
