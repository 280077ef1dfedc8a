package repository

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"clicker_game/internal/domain"
)

type pairKey struct{ player, item int64 }

// MemoryStore is an in-process Store and UserStore. Writes made inside
// WithPlayerLock are staged and only become visible on success, matching the
// rollback behaviour of the Postgres store. Used by tests and local tools.
type MemoryStore struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
	seq   int64

	users          map[int64]*domain.User
	players        map[int64]*domain.Player // by user id
	upgrades       map[int64]*domain.Upgrade
	playerUpgrades map[pairKey]*domain.PlayerUpgrade
	dailyRewards   map[int]*domain.DailyReward // by day
	claims         []*domain.PlayerDailyReward
	tasks          map[int64]*domain.Task
	playerTasks    map[pairKey]*domain.PlayerTask
	transactions   []*domain.Transaction
	audit          []*domain.AuditLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks:          make(map[int64]*sync.Mutex),
		users:          make(map[int64]*domain.User),
		players:        make(map[int64]*domain.Player),
		upgrades:       make(map[int64]*domain.Upgrade),
		playerUpgrades: make(map[pairKey]*domain.PlayerUpgrade),
		dailyRewards:   make(map[int]*domain.DailyReward),
		tasks:          make(map[int64]*domain.Task),
		playerTasks:    make(map[pairKey]*domain.PlayerTask),
	}
}

var (
	_ Store      = (*MemoryStore)(nil)
	_ UserStore  = (*MemoryStore)(nil)
	_ AdminStore = (*MemoryStore)(nil)
)

func (s *MemoryStore) nextID() int64 {
	s.seq++
	return s.seq
}

// AddUpgrade seeds the catalog. A zero ID is assigned.
func (s *MemoryStore) AddUpgrade(u *domain.Upgrade) *domain.Upgrade {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.nextID()
	}
	s.upgrades[u.ID] = u
	return u
}

func (s *MemoryStore) AddDailyReward(r *domain.DailyReward) *domain.DailyReward {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = int64(r.Day)
	}
	s.dailyRewards[r.Day] = r
	return r
}

func (s *MemoryStore) AddTask(t *domain.Task) *domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = s.nextID()
	}
	s.tasks[t.ID] = t
	return t
}

// SetTaskProgress plays the role of the external progress tracker.
func (s *MemoryStore) SetTaskProgress(playerID, taskID, progress int64, completed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := pairKey{playerID, taskID}
	pt, ok := s.playerTasks[k]
	if !ok {
		pt = &domain.PlayerTask{ID: s.nextID(), PlayerID: playerID, TaskID: taskID}
		s.playerTasks[k] = pt
	}
	pt.Progress = progress
	pt.IsCompleted = completed
}

// Transactions returns the ledger for a player in insertion order.
func (s *MemoryStore) Transactions(playerID int64) []*domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Transaction
	for _, t := range s.transactions {
		if t.PlayerID == playerID {
			out = append(out, t)
		}
	}
	return out
}

func (s *MemoryStore) PlayerByUserID(_ context.Context, userID int64) (*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[userID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) ListActiveUpgrades(context.Context) ([]*domain.Upgrade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Upgrade
	for _, u := range s.upgrades {
		if u.IsActive {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) ListPlayerUpgrades(_ context.Context, playerID int64) ([]*domain.PlayerUpgrade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.PlayerUpgrade
	for k, pu := range s.playerUpgrades {
		if k.player == playerID {
			cp := *pu
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListDailyRewards(context.Context) ([]*domain.DailyReward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.DailyReward, 0, len(s.dailyRewards))
	for _, r := range s.dailyRewards {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (s *MemoryStore) ListDailyClaims(_ context.Context, playerID int64) ([]*domain.PlayerDailyReward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.PlayerDailyReward
	for i := len(s.claims) - 1; i >= 0; i-- {
		c := s.claims[i]
		if c.PlayerID != playerID {
			continue
		}
		cp := *c
		for _, r := range s.dailyRewards {
			if r.ID == c.RewardID {
				rc := *r
				cp.Reward = &rc
			}
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) ListActiveTasks(context.Context) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Task
	for _, t := range s.tasks {
		if t.IsActive {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) ListPlayerTasks(_ context.Context, playerID int64) ([]*domain.PlayerTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.PlayerTask
	for k, pt := range s.playerTasks {
		if k.player == playerID {
			cp := *pt
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) TopPlayers(_ context.Context, limit int) ([]*domain.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.LeaderboardEntry, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, &domain.LeaderboardEntry{
			PlayerID: p.ID, Username: p.Username, Balance: p.Balance,
			Level: p.Level, CoinsPerClick: p.CoinsPerClick,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Balance != out[j].Balance {
			return out[i].Balance > out[j].Balance
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i, e := range out {
		e.Rank = i + 1
	}
	return out, nil
}

func (s *MemoryStore) lockFor(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

func (s *MemoryStore) WithPlayerLock(ctx context.Context, userID int64, fn PlayerTxFunc) error {
	l := s.lockFor(userID)
	l.Lock()
	defer l.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := s.PlayerByUserID(ctx, userID)
	if err != nil {
		return err
	}

	tx := &memTx{
		store:          s,
		playerUpgrades: make(map[pairKey]*domain.PlayerUpgrade),
		playerTasks:    make(map[pairKey]*domain.PlayerTask),
	}
	if err := fn(ctx, tx, p); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memTx struct {
	store          *MemoryStore
	player         *domain.Player
	playerUpgrades map[pairKey]*domain.PlayerUpgrade
	playerTasks    map[pairKey]*domain.PlayerTask
	claims         []*domain.PlayerDailyReward
	transactions   []*domain.Transaction
}

func (t *memTx) commit() {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.player != nil {
		s.players[t.player.UserID] = t.player
	}
	for k, pu := range t.playerUpgrades {
		s.playerUpgrades[k] = pu
	}
	for k, pt := range t.playerTasks {
		s.playerTasks[k] = pt
	}
	s.claims = append(s.claims, t.claims...)
	s.transactions = append(s.transactions, t.transactions...)
}

func (t *memTx) UpdatePlayer(_ context.Context, p *domain.Player) error {
	t.player = p.Clone()
	return nil
}

func (t *memTx) GetUpgrade(_ context.Context, id int64) (*domain.Upgrade, error) {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.upgrades[id]
	if !ok {
		return nil, domain.ErrUpgradeNotFound
	}
	cp := *u
	return &cp, nil
}

func (t *memTx) GetOrCreatePlayerUpgrade(_ context.Context, playerID, upgradeID int64) (*domain.PlayerUpgrade, error) {
	k := pairKey{playerID, upgradeID}
	if pu, ok := t.playerUpgrades[k]; ok {
		cp := *pu
		return &cp, nil
	}
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	pu, ok := s.playerUpgrades[k]
	if !ok {
		pu = &domain.PlayerUpgrade{ID: s.nextID(), PlayerID: playerID, UpgradeID: upgradeID}
	}
	cp := *pu
	t.playerUpgrades[k] = &cp
	out := cp
	return &out, nil
}

func (t *memTx) UpdatePlayerUpgrade(_ context.Context, pu *domain.PlayerUpgrade) error {
	cp := *pu
	t.playerUpgrades[pairKey{pu.PlayerID, pu.UpgradeID}] = &cp
	return nil
}

func (t *memTx) GetMostRecentDailyClaim(_ context.Context, playerID int64) (*domain.PlayerDailyReward, error) {
	for i := len(t.claims) - 1; i >= 0; i-- {
		if t.claims[i].PlayerID == playerID {
			cp := *t.claims[i]
			return &cp, nil
		}
	}
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var last *domain.PlayerDailyReward
	for _, c := range s.claims {
		if c.PlayerID == playerID && (last == nil || !c.ClaimedAt.Before(last.ClaimedAt)) {
			last = c
		}
	}
	if last == nil {
		return nil, nil
	}
	cp := *last
	return &cp, nil
}

func (t *memTx) GetDailyReward(_ context.Context, day int) (*domain.DailyReward, error) {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.dailyRewards[day]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (t *memTx) CreateDailyClaim(_ context.Context, c *domain.PlayerDailyReward) error {
	t.store.mu.Lock()
	c.ID = t.store.nextID()
	t.store.mu.Unlock()
	cp := *c
	t.claims = append(t.claims, &cp)
	return nil
}

func (t *memTx) GetTask(_ context.Context, id int64) (*domain.Task, error) {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

func (t *memTx) GetOrCreatePlayerTask(_ context.Context, playerID, taskID int64) (*domain.PlayerTask, error) {
	k := pairKey{playerID, taskID}
	if pt, ok := t.playerTasks[k]; ok {
		cp := *pt
		return &cp, nil
	}
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	pt, ok := s.playerTasks[k]
	if !ok {
		pt = &domain.PlayerTask{ID: s.nextID(), PlayerID: playerID, TaskID: taskID}
	}
	cp := *pt
	t.playerTasks[k] = &cp
	out := cp
	return &out, nil
}

func (t *memTx) UpdatePlayerTask(_ context.Context, pt *domain.PlayerTask) error {
	cp := *pt
	t.playerTasks[pairKey{pt.PlayerID, pt.TaskID}] = &cp
	return nil
}

func (t *memTx) RecordTransaction(_ context.Context, tr *domain.Transaction) error {
	t.store.mu.Lock()
	tr.ID = t.store.nextID()
	t.store.mu.Unlock()
	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = time.Now()
	}
	cp := *tr
	t.transactions = append(t.transactions, &cp)
	return nil
}

// UserStore

func (s *MemoryStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email != nil && strings.EqualFold(*u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *MemoryStore) GetByTgID(_ context.Context, tgID int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.TgID != nil && *u.TgID == tgID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *MemoryStore) CreateWithPlayer(_ context.Context, u *domain.User, now time.Time) (*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if u.Email != nil && existing.Email != nil && strings.EqualFold(*u.Email, *existing.Email) {
			return nil, domain.ErrUserExists
		}
		if u.TgID != nil && existing.TgID != nil && *u.TgID == *existing.TgID {
			return nil, domain.ErrUserExists
		}
	}
	u.ID = s.nextID()
	u.CreatedAt = now
	cu := *u
	s.users[u.ID] = &cu

	p := domain.NewPlayer(u.ID, u.Username, now)
	p.ID = s.nextID()
	p.TelegramID = u.TgID
	s.players[u.ID] = p
	return p.Clone(), nil
}

func (s *MemoryStore) EnsurePlayer(_ context.Context, u *domain.User, now time.Time) (*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[u.ID]
	if !ok {
		p = domain.NewPlayer(u.ID, u.Username, now)
		p.ID = s.nextID()
		p.TelegramID = u.TgID
		s.players[u.ID] = p
	}
	p.LastLogin = now
	return p.Clone(), nil
}

// AdminStore

func (s *MemoryStore) Stats(_ context.Context, dayStart, weekStart time.Time) (*domain.AdminStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &domain.AdminStats{TotalUsers: int64(len(s.users))}
	for _, p := range s.players {
		st.TotalBalance += p.Balance
		if !p.LastLogin.Before(dayStart) {
			st.ActiveToday++
		}
		if !p.LastLogin.Before(weekStart) {
			st.ActiveWeek++
		}
	}
	for _, t := range s.transactions {
		if t.CreatedAt.Before(dayStart) {
			continue
		}
		switch t.Type {
		case domain.TxTypeClick:
			st.ClickCoinsToday += t.Amount
		case domain.TxTypeUpgradePurchase:
			st.UpgradesBoughtToday++
		}
	}
	for _, c := range s.claims {
		if !c.ClaimedAt.Before(dayStart) {
			st.DailyClaimsToday++
		}
	}
	for _, pt := range s.playerTasks {
		if pt.CompletedAt != nil && !pt.CompletedAt.Before(dayStart) {
			st.TasksClaimedToday++
		}
	}
	return st, nil
}

func (s *MemoryStore) ResolveUserID(_ context.Context, identifier string) (int64, error) {
	identifier = strings.TrimPrefix(strings.TrimSpace(identifier), "@")
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		for _, u := range s.users {
			if u.TgID != nil && *u.TgID == n {
				return u.ID, nil
			}
		}
		if _, ok := s.users[n]; ok {
			return n, nil
		}
		return 0, domain.ErrUserNotFound
	}
	for _, u := range s.users {
		if identifier != "" && strings.EqualFold(u.Username, identifier) {
			return u.ID, nil
		}
	}
	return 0, domain.ErrUserNotFound
}

func (s *MemoryStore) TelegramIDs(context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for _, u := range s.users {
		if u.TgID != nil {
			ids = append(ids, *u.TgID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Create appends an audit entry, so the store can back AuditService too.
func (s *MemoryStore) Create(_ context.Context, e *domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	cp := *e
	s.audit = append(s.audit, &cp)
	return nil
}

func (s *MemoryStore) RecentAudit(_ context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.AuditLog
	for i := len(s.audit) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if e := s.audit[i]; e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}
