// Package mongo stores portfolios as MongoDB documents. A unique index on slug
// backs slug uniqueness; versioned replaces and counter increments are single
// atomic document updates.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"folio/internal/domain"
	models "folio/internal/domain/models/portfolio"
	portfolioRepo "folio/internal/domain/repositories/portfolio"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "portfolios"

// Connect opens a client and verifies the server is reachable
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return client, nil
}

// PortfolioRepository implements the PortfolioRepository interface on MongoDB
type PortfolioRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewPortfolioRepository creates a repository over the portfolios collection of db
func NewPortfolioRepository(db *mongo.Database, logger *slog.Logger) *PortfolioRepository {
	return &PortfolioRepository{
		coll:   db.Collection(collectionName),
		logger: logger,
	}
}

var _ portfolioRepo.PortfolioRepository = (*PortfolioRepository)(nil)

// EnsureIndexes creates the unique slug index and the lookup indexes
func (r *PortfolioRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("slug_unique"),
		},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "collaborators.user_id", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create portfolio indexes: %w", err)
	}
	r.logger.Info("mongo indexes ensured", "collection", collectionName)
	return nil
}

// Create inserts a new portfolio with a generated ID
func (r *PortfolioRepository) Create(ctx context.Context, p *models.Portfolio) error {
	p.ID = uuid.NewString()

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		p.ID = ""
		if mongo.IsDuplicateKeyError(err) {
			return slugConflict(p.Slug)
		}
		return fmt.Errorf("create portfolio: %w", err)
	}
	return nil
}

// GetByID retrieves a portfolio by ID
func (r *PortfolioRepository) GetByID(ctx context.Context, id string) (*models.Portfolio, error) {
	return r.findOne(ctx, bson.M{"_id": id}, fmt.Sprintf("portfolio %s", id))
}

// GetBySlug retrieves a portfolio by slug
func (r *PortfolioRepository) GetBySlug(ctx context.Context, slug string) (*models.Portfolio, error) {
	return r.findOne(ctx, bson.M{"slug": slug}, fmt.Sprintf("portfolio with slug %s", slug))
}

func (r *PortfolioRepository) findOne(ctx context.Context, filter bson.M, what string) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", what, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", what, err)
	}
	return &p, nil
}

// SlugExists reports whether slug is used by any portfolio other than excludeID
func (r *PortfolioRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, slugFilter(slug, excludeID), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return count > 0, nil
}

// Replace sets every non-counter field if the stored version still matches
func (r *PortfolioRepository) Replace(ctx context.Context, p *models.Portfolio, expectedVersion int) error {
	filter := bson.M{"_id": p.ID, "version": expectedVersion}

	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": replaceFields(p)})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return slugConflict(p.Slug)
		}
		return fmt.Errorf("replace portfolio: %w", err)
	}

	if result.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, p.ID); err != nil {
			return err
		}
		return &domain.VersionConflictError{ResourceID: p.ID, ExpectedVersion: expectedVersion}
	}
	return nil
}

// IncrementStats applies delta with $inc and returns the counters after the update
func (r *PortfolioRepository) IncrementStats(ctx context.Context, id string, delta models.StatsDelta) (*models.Stats, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"stats": 1})

	var out struct {
		Stats models.Stats `bson:"stats"`
	}
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, statsUpdate(delta), opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("portfolio %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("increment stats: %w", err)
	}
	return &out.Stats, nil
}

// Delete permanently removes a portfolio
func (r *PortfolioRepository) Delete(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete portfolio: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("portfolio %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListByOwner lists portfolios owned by ownerID, most recently updated first
func (r *PortfolioRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Portfolio, error) {
	return r.list(ctx, bson.M{"owner_id": ownerID})
}

// ListByCollaborator lists portfolios where userID is an accepted collaborator
func (r *PortfolioRepository) ListByCollaborator(ctx context.Context, userID string) ([]models.Portfolio, error) {
	return r.list(ctx, collaboratorFilter(userID))
}

func (r *PortfolioRepository) list(ctx context.Context, filter bson.M) ([]models.Portfolio, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}

	portfolios := []models.Portfolio{}
	if err := cursor.All(ctx, &portfolios); err != nil {
		return nil, fmt.Errorf("decode portfolios: %w", err)
	}
	return portfolios, nil
}

// replaceFields lists the fields a versioned replace writes. Stats are excluded
// so that a concurrent $inc is never overwritten.
func replaceFields(p *models.Portfolio) bson.M {
	collaborators := p.Collaborators
	if collaborators == nil {
		collaborators = []models.Collaborator{}
	}
	backups := p.Backups
	if backups == nil {
		backups = []models.Backup{}
	}
	sections := p.Sections
	if sections == nil {
		sections = []models.Section{}
	}

	return bson.M{
		"slug":          p.Slug,
		"owner_id":      p.OwnerID,
		"title":         p.Title,
		"description":   p.Description,
		"template":      p.Template,
		"theme":         p.Theme,
		"sections":      sections,
		"is_public":     p.IsPublic,
		"published_at":  p.PublishedAt,
		"collaborators": collaborators,
		"version":       p.Version,
		"backups":       backups,
		"updated_at":    p.UpdatedAt,
	}
}

func statsUpdate(delta models.StatsDelta) bson.M {
	update := bson.M{
		"$inc": bson.M{
			"stats.views":        delta.Views,
			"stats.unique_views": delta.UniqueViews,
			"stats.shares":       delta.Shares,
			"stats.downloads":    delta.Downloads,
		},
	}
	if delta.ViewedAt != nil {
		update["$set"] = bson.M{"stats.last_viewed": *delta.ViewedAt}
	}
	return update
}

func slugFilter(slug, excludeID string) bson.M {
	filter := bson.M{"slug": slug}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	return filter
}

func collaboratorFilter(userID string) bson.M {
	return bson.M{
		"collaborators": bson.M{
			"$elemMatch": bson.M{
				"user_id":     userID,
				"accepted_at": bson.M{"$ne": nil},
			},
		},
	}
}

func slugConflict(slug string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("slug '%s' already exists", slug),
		ResourceType: "slug",
		ResourceID:   slug,
	}
}
