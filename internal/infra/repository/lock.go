package repository

import (
	"errors"

	repo "rewards/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SELECT ... FOR UPDATE
// sqliteは行ロックが無い（DB全体のロックになる）ので付けない
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// gormのエラーをrepositoryのエラーに寄せる
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repo.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repo.ErrDuplicate
	}
	return err
}

// 0件を正常系として扱う検索用
func found(err error) (bool, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}
