package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foto-parana/contest-service/internal/models"
	"github.com/foto-parana/contest-service/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests. Sub-repos
// share its maps, so a transaction callback sees the same state.
type mockRepository struct {
	mu sync.Mutex

	users        map[uuid.UUID]*models.User
	tokens       map[string]*models.Token
	images       map[uuid.UUID]*models.Image
	ratings      map[string]*models.Rating
	imageRatings map[string]*models.ImageRating
	mediaRows    []*models.UserMediaRow
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:        make(map[uuid.UUID]*models.User),
		tokens:       make(map[string]*models.Token),
		images:       make(map[uuid.UUID]*models.Image),
		ratings:      make(map[string]*models.Rating),
		imageRatings: make(map[string]*models.ImageRating),
	}
}

func (m *mockRepository) User() repositories.UserRepository     { return &mockUserRepo{m} }
func (m *mockRepository) Token() repositories.TokenRepository   { return &mockTokenRepo{m} }
func (m *mockRepository) Image() repositories.ImageRepository   { return &mockImageRepo{m} }
func (m *mockRepository) Rating() repositories.RatingRepository { return &mockRatingRepo{m} }
func (m *mockRepository) Report() repositories.ReportRepository { return &mockReportRepo{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

func (m *mockRepository) addUser(user *models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	return user
}

func ratingLedgerKey(evaluatorID, evaluatedUserID uuid.UUID, category, criteria string) string {
	return fmt.Sprintf("%s|%s|%s|%s", evaluatorID, evaluatedUserID, category, criteria)
}

func imageRatingKey(evaluatorID, imageID uuid.UUID) string {
	return fmt.Sprintf("%s|%s", evaluatorID, imageID)
}

// ===== USER =====

// mockUserRepo mirrors the Postgres soft-delete semantics: Delete marks the
// row, reads skip marked rows, the uniqueness check only covers live rows
// (the partial unique index), and HardDelete removes the row outright.
type mockUserRepo struct{ m *mockRepository }

func (r *mockUserRepo) liveUser(id uuid.UUID) (*models.User, bool) {
	user, ok := r.m.users[id]
	if !ok || user.DeletedAt.Valid {
		return nil, false
	}
	return user, true
}

func (r *mockUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.DeletedAt.Valid {
			continue
		}
		if u.Email == user.Email || u.Document == user.Document {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.m.users[user.ID] = user
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.liveUser(id)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if !u.DeletedAt.Valid && u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.liveUser(id)
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		user.Name = name
	}
	if email, ok := updates["email"].(string); ok {
		user.Email = email
	}
	if address, ok := updates["address"].(string); ok {
		user.Address = address
	}
	return nil
}

func (r *mockUserRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.liveUser(id)
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	return nil
}

func (r *mockUserRepo) HardDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.users, id)
	return nil
}

func (r *mockUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		if u.DeletedAt.Valid {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (r *mockUserRepo) GetByEmailOrDocument(ctx context.Context, tx *gorm.DB, email, document string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.DeletedAt.Valid {
			continue
		}
		if u.Email == email || u.Document == document {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetFile(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]byte, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.liveUser(id)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user.File, nil
}

func (r *mockUserRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	_, ok := r.liveUser(id)
	return ok, nil
}

// ===== TOKEN =====

type mockTokenRepo struct{ m *mockRepository }

func (r *mockTokenRepo) Create(ctx context.Context, tx *gorm.DB, token *models.Token) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.tokens[token.Token] = token
	return nil
}

func (r *mockTokenRepo) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Token, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	record, ok := r.m.tokens[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (r *mockTokenRepo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for key, token := range r.m.tokens {
		if token.UserID == userID {
			delete(r.m.tokens, key)
		}
	}
	return nil
}

func (r *mockTokenRepo) DeleteExpired(ctx context.Context, tx *gorm.DB) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var purged int64
	now := time.Now()
	for key, token := range r.m.tokens {
		if token.ExpirationDate.Before(now) {
			delete(r.m.tokens, key)
			purged++
		}
	}
	return purged, nil
}

// ===== IMAGE =====

type mockImageRepo struct{ m *mockRepository }

func (r *mockImageRepo) Create(ctx context.Context, tx *gorm.DB, image *models.Image) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	r.m.images[image.ID] = image
	return nil
}

func (r *mockImageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Image, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	image, ok := r.m.images[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return image, nil
}

func (r *mockImageRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	image, ok := r.m.images[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if title, ok := updates["title"].(string); ok {
		image.Title = title
	}
	if place, ok := updates["place"].(string); ok {
		image.Place = place
	}
	if description, ok := updates["description"].(string); ok {
		image.Description = description
	}
	if data, ok := updates["data"].([]byte); ok {
		image.Data = data
	}
	return nil
}

func (r *mockImageRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.images[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.images, id)
	return nil
}

func (r *mockImageRepo) GetData(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Image, error) {
	return r.GetByID(ctx, tx, id)
}

func (r *mockImageRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ImageFilters) ([]*models.Image, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Image, 0, len(r.m.images))
	for _, img := range r.m.images {
		out = append(out, img)
	}
	return out, int64(len(out)), nil
}

func (r *mockImageRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*models.Image, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Image
	for _, img := range r.m.images {
		if img.UserID == userID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (r *mockImageRepo) CountBySubcategory(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subcategory string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var count int64
	for _, img := range r.m.images {
		if img.UserID == userID && img.Subcategory == subcategory {
			count++
		}
	}
	return count, nil
}

// ===== RATING =====

type mockRatingRepo struct{ m *mockRepository }

func (r *mockRatingRepo) UpsertBatch(ctx context.Context, tx *gorm.DB, ratings []*models.Rating) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, rating := range ratings {
		key := ratingLedgerKey(rating.EvaluatorID, rating.EvaluatedUserID, rating.Category, rating.Criteria)
		if existing, ok := r.m.ratings[key]; ok {
			existing.Score = rating.Score
			continue
		}
		if rating.ID == uuid.Nil {
			rating.ID = uuid.New()
		}
		r.m.ratings[key] = rating
	}
	return nil
}

func (r *mockRatingRepo) GetByKey(ctx context.Context, tx *gorm.DB, key repositories.RatingKey) ([]*models.Rating, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Rating
	for _, rating := range r.m.ratings {
		if rating.EvaluatorID == key.EvaluatorID &&
			rating.EvaluatedUserID == key.EvaluatedUserID &&
			rating.Category == key.Category {
			out = append(out, rating)
		}
	}
	return out, nil
}

func (r *mockRatingRepo) DeleteByKey(ctx context.Context, tx *gorm.DB, key repositories.RatingKey) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var deleted int64
	for mapKey, rating := range r.m.ratings {
		if rating.EvaluatorID == key.EvaluatorID &&
			rating.EvaluatedUserID == key.EvaluatedUserID &&
			rating.Category == key.Category {
			delete(r.m.ratings, mapKey)
			deleted++
		}
	}
	return deleted, nil
}

func (r *mockRatingRepo) CountByKey(ctx context.Context, tx *gorm.DB, key repositories.RatingKey) (int64, error) {
	rows, err := r.GetByKey(ctx, tx, key)
	return int64(len(rows)), err
}

func (r *mockRatingRepo) SetImageRating(ctx context.Context, tx *gorm.DB, rating *models.ImageRating) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := imageRatingKey(rating.EvaluatorID, rating.ImageID)
	if existing, ok := r.m.imageRatings[key]; ok {
		existing.Rating = rating.Rating
		return nil
	}
	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}
	r.m.imageRatings[key] = rating
	return nil
}

func (r *mockRatingRepo) GetImageRating(ctx context.Context, tx *gorm.DB, evaluatorID, imageID uuid.UUID) (*models.ImageRating, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rating, ok := r.m.imageRatings[imageRatingKey(evaluatorID, imageID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rating, nil
}

func (r *mockRatingRepo) GetImageRatingsForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subcategory string) ([]*models.ImageRating, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.ImageRating
	for _, rating := range r.m.imageRatings {
		image, ok := r.m.images[rating.ImageID]
		if !ok || image.UserID != userID || image.Subcategory != subcategory {
			continue
		}
		out = append(out, rating)
	}
	return out, nil
}

// ===== REPORT =====

type mockReportRepo struct{ m *mockRepository }

func (r *mockReportRepo) UserMediaAverages(ctx context.Context, tx *gorm.DB) ([]*models.UserMediaRow, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.mediaRows, nil
}

func (r *mockReportRepo) CategoryAverage(ctx context.Context, tx *gorm.DB, userID uuid.UUID, category string) (*float64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var sum, n float64
	for _, rating := range r.m.ratings {
		if rating.EvaluatedUserID == userID && rating.Category == category {
			sum += float64(rating.Score)
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := sum / n
	return &avg, nil
}
