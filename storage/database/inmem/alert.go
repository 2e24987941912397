package inmemdb

import (
	"sort"

	"github.com/edumanage/edurisk/core/alert"
)

type alertRepository struct {
	db *alertTable
}

func NewAlertRepository(db *DB) alert.Repository {
	return &alertRepository{db: db.alert}
}

func (repo *alertRepository) CreateAlert(a alert.Alert) (alert.Alert, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[a.ID] = &a
	return a, nil
}

func (repo *alertRepository) GetAlertByID(id string) (alert.Alert, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok {
		return *a, nil
	}
	return alert.Alert{}, alert.ErrNotFound
}

func (repo *alertRepository) QueryAlertsByPRN(prn string) ([]alert.Alert, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	alerts := make([]alert.Alert, 0)
	for _, a := range repo.db.table {
		if a.StudentPRN == prn {
			alerts = append(alerts, *a)
		}
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].SentAt.After(alerts[j].SentAt) })
	return alerts, nil
}

func (repo *alertRepository) MarkAlertRead(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.table[id]
	if !ok {
		return alert.ErrNotFound
	}
	a.Read = true
	return nil
}
