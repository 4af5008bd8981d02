package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/brad-luo/web-tools/internal/models"
	"github.com/brad-luo/web-tools/internal/repository"
)

// memStore is an in-memory Store. Transactions are serialized and rolled
// back by restoring a snapshot.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextAccountID int64
	nextLinkageID int64
	nextProjectID int64
	accounts      map[int64]*models.Account
	linkages      map[string]*models.ProviderLinkage
	usage         map[string]int
	projects      map[int64]*models.Project

	getAccountErr    error
	createAccountErr error
	upsertLinkageErr error
	setImageErr      error
	usageErr         error
	usageGetErr      error
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[int64]*models.Account),
		linkages: make(map[string]*models.ProviderLinkage),
		usage:    make(map[string]int),
		projects: make(map[int64]*models.Project),
	}
}

func linkageKey(p models.Provider, subject string) string {
	return string(p) + "|" + subject
}

func (s *memStore) Repos() repository.Repos {
	return repository.Repos{
		Accounts: memAccounts{s},
		Linkages: memLinkages{s},
		Usage:    memUsage{s},
		Projects: memProjects{s},
	}
}

func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	accounts := make(map[int64]*models.Account, len(s.accounts))
	for k, v := range s.accounts {
		cp := *v
		accounts[k] = &cp
	}
	linkages := make(map[string]*models.ProviderLinkage, len(s.linkages))
	for k, v := range s.linkages {
		cp := *v
		linkages[k] = &cp
	}
	nextAccountID, nextLinkageID := s.nextAccountID, s.nextLinkageID
	s.mu.Unlock()

	if err := fn(ctx, s.Repos()); err != nil {
		s.mu.Lock()
		s.accounts, s.linkages = accounts, linkages
		s.nextAccountID, s.nextLinkageID = nextAccountID, nextLinkageID
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) accountCount(email string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.accounts {
		if a.Email == email {
			n++
		}
	}
	return n
}

func (s *memStore) linkageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.linkages)
}

func (s *memStore) account(id int64) *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accounts[id]
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

func (s *memStore) linkage(p models.Provider, subject string) *models.ProviderLinkage {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.linkages[linkageKey(p, subject)]
	if l == nil {
		return nil
	}
	cp := *l
	return &cp
}

type memAccounts struct{ s *memStore }

func (r memAccounts) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.s.account(id), nil
}

func (r memAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if r.s.getAccountErr != nil {
		return nil, r.s.getAccountErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memAccounts) CreateIfAbsent(ctx context.Context, email string, name, image *string) (*models.Account, bool, error) {
	if r.s.createAccountErr != nil {
		return nil, false, r.s.createAccountErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.Email == email {
			cp := *a
			return &cp, false, nil
		}
	}
	r.s.nextAccountID++
	now := time.Now()
	a := &models.Account{ID: r.s.nextAccountID, Email: email, Name: name, Image: image, CreatedAt: now, UpdatedAt: now}
	r.s.accounts[a.ID] = a
	cp := *a
	return &cp, true, nil
}

func (r memAccounts) SetImageIfEmpty(ctx context.Context, id int64, image string) (bool, error) {
	if r.s.setImageErr != nil {
		return false, r.s.setImageErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := r.s.accounts[id]
	if a == nil || a.Image != nil {
		return false, nil
	}
	a.Image = &image
	return true, nil
}

func (r memAccounts) Delete(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[id]; !ok {
		return false, nil
	}
	delete(r.s.accounts, id)
	for k, l := range r.s.linkages {
		if l.AccountID == id {
			delete(r.s.linkages, k)
		}
	}
	return true, nil
}

type memLinkages struct{ s *memStore }

func (r memLinkages) Upsert(ctx context.Context, accountID int64, provider models.Provider, subjectID string, profileImage *string, tokens models.ProviderTokens) (*models.LinkageUpsert, error) {
	if r.s.upsertLinkageErr != nil {
		return nil, r.s.upsertLinkageErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := linkageKey(provider, subjectID)
	if l, ok := r.s.linkages[key]; ok {
		if tokens.AccessToken != nil {
			l.AccessToken = tokens.AccessToken
		}
		if tokens.RefreshToken != nil {
			l.RefreshToken = tokens.RefreshToken
		}
		if tokens.ExpiresAt != nil {
			l.ExpiresAt = tokens.ExpiresAt
		}
		l.UpdatedAt = time.Now()
		return &models.LinkageUpsert{ID: l.ID, AccountID: l.AccountID, Created: false}, nil
	}
	r.s.nextLinkageID++
	now := time.Now()
	l := &models.ProviderLinkage{
		ID:                r.s.nextLinkageID,
		AccountID:         accountID,
		Provider:          provider,
		ProviderSubjectID: subjectID,
		ProfileImage:      profileImage,
		AccessToken:       tokens.AccessToken,
		RefreshToken:      tokens.RefreshToken,
		ExpiresAt:         tokens.ExpiresAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	r.s.linkages[key] = l
	return &models.LinkageUpsert{ID: l.ID, AccountID: accountID, Created: true}, nil
}

func (r memLinkages) ListByAccount(ctx context.Context, accountID int64) ([]*models.ProviderLinkage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.ProviderLinkage
	for id := int64(1); id <= r.s.nextLinkageID; id++ {
		for _, l := range r.s.linkages {
			if l.ID == id && l.AccountID == accountID {
				cp := *l
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (r memLinkages) Delete(ctx context.Context, accountID int64, provider models.Provider, subjectID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := linkageKey(provider, subjectID)
	l, ok := r.s.linkages[key]
	if !ok || l.AccountID != accountID {
		return false, nil
	}
	delete(r.s.linkages, key)
	return true, nil
}

type memUsage struct{ s *memStore }

func (r memUsage) Get(ctx context.Context, email, day string) (int, error) {
	if r.s.usageGetErr != nil {
		return 0, r.s.usageGetErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.usage[email+"|"+day], nil
}

func (r memUsage) IncrementBelow(ctx context.Context, email, day string, ceiling int) (int, bool, error) {
	if r.s.usageErr != nil {
		return 0, false, r.s.usageErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := email + "|" + day
	if r.s.usage[key] >= ceiling {
		return 0, false, nil
	}
	r.s.usage[key]++
	return r.s.usage[key], true, nil
}

type memProjects struct{ s *memStore }

func (r memProjects) sorted(keep func(*models.Project) bool) []*models.Project {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Project{}
	for _, featured := range []bool{true, false} {
		for id := int64(1); id <= r.s.nextProjectID; id++ {
			p, ok := r.s.projects[id]
			if ok && p.Featured == featured && keep(p) {
				cp := *p
				out = append(out, &cp)
			}
		}
	}
	return out
}

func (r memProjects) List(ctx context.Context) ([]*models.Project, error) {
	return r.sorted(func(*models.Project) bool { return true }), nil
}

func (r memProjects) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r memProjects) ListByCategory(ctx context.Context, category string) ([]*models.Project, error) {
	return r.sorted(func(p *models.Project) bool { return p.Category == category }), nil
}

func (r memProjects) ListFeatured(ctx context.Context) ([]*models.Project, error) {
	return r.sorted(func(p *models.Project) bool { return p.Featured }), nil
}

func (r memProjects) Create(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextProjectID++
	now := time.Now()
	p := &models.Project{
		ID: r.s.nextProjectID, Name: req.Name, Description: req.Description, URL: req.URL,
		Icon: req.Icon, Color: req.Color, Category: req.Category, Featured: req.Featured,
		CreatedAt: now, UpdatedAt: now,
	}
	r.s.projects[p.ID] = p
	cp := *p
	return &cp, nil
}

func (r memProjects) Update(ctx context.Context, id int64, upd *models.ProjectUpdate) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, nil
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Name, upd.Name)
	set(&p.Description, upd.Description)
	set(&p.URL, upd.URL)
	set(&p.Icon, upd.Icon)
	set(&p.Color, upd.Color)
	set(&p.Category, upd.Category)
	if upd.Featured != nil {
		p.Featured = *upd.Featured
	}
	cp := *p
	return &cp, nil
}

func (r memProjects) Delete(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return false, nil
	}
	delete(r.s.projects, id)
	return true, nil
}

var errDBDown = errors.New("db down")

func strPtr(s string) *string { return &s }
