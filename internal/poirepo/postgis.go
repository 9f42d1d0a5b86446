package poirepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/watnow/routeloop/internal/apperr"
	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
	"github.com/watnow/routeloop/internal/opmetrics"
)

// PostgisRepository queries a `pois` table with a `location
// geography(Point,4326)` column and a GiST spatial index, using
// ST_DWithin/ST_MakeEnvelope for the two query shapes §4.1 requires.
// Grounded on the corpus's sqlx-based PostGIS query construction,
// generalized from the teacher's raw-SQL radius query.
type PostgisRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgisRepository wraps an already-connected sqlx.DB. The pool-size
// bound from §5's resource policy is applied by the caller via
// db.SetMaxOpenConns before this constructor runs.
func NewPostgisRepository(db *sqlx.DB, logger *zap.Logger) *PostgisRepository {
	return &PostgisRepository{db: db, logger: logger}
}

type poiRow struct {
	ID                 string   `db:"id"`
	Name               string   `db:"name"`
	Category           string   `db:"category"`
	Lat                float64  `db:"lat"`
	Lng                float64  `db:"lng"`
	Popularity         int      `db:"popularity"`
	Description        *string  `db:"description"`
	EstimatedVisitMins *int     `db:"estimated_visit_minutes"`
	OsmID              *int64   `db:"osm_id"`
}

func (row poiRow) toPoi() (model.Poi, error) {
	coords, err := geo.NewCoordinates(row.Lat, row.Lng)
	if err != nil {
		return model.Poi{}, fmt.Errorf("poirepo: invalid stored coordinates for poi %s: %w", row.ID, err)
	}
	poi, err := model.NewPoi(row.ID, row.Name, model.PoiCategory(row.Category), coords, row.Popularity)
	if err != nil {
		return model.Poi{}, err
	}
	if row.Description != nil {
		poi.Description = *row.Description
	}
	poi.EstimatedVisitMins = row.EstimatedVisitMins
	poi.OsmID = row.OsmID
	return poi, nil
}

func (r *PostgisRepository) FindWithinRadius(ctx context.Context, center geo.Coordinates, radiusMeters float64, categories []model.PoiCategory, limit int) ([]model.Poi, error) {
	start := time.Now()
	defer func() {
		opmetrics.RepositoryQueryDuration.WithLabelValues("find_within_radius").Observe(time.Since(start).Seconds())
	}()

	query := `
		SELECT id, name, category, lat, lng, popularity, description, estimated_visit_minutes, osm_id
		FROM pois
		WHERE ST_DWithin(
			location,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
			$3
		)`
	args := []any{center.Lng(), center.Lat(), radiusMeters}

	query, args = appendCategoryFilter(query, args, categories)

	query += fmt.Sprintf(`
		ORDER BY ST_Distance(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography)
		LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	return r.queryPois(ctx, query, args)
}

func (r *PostgisRepository) FindInBbox(ctx context.Context, box geo.BoundingBox, categories []model.PoiCategory, limit int) ([]model.Poi, error) {
	start := time.Now()
	defer func() {
		opmetrics.RepositoryQueryDuration.WithLabelValues("find_in_bbox").Observe(time.Since(start).Seconds())
	}()

	query := `
		SELECT id, name, category, lat, lng, popularity, description, estimated_visit_minutes, osm_id
		FROM pois
		WHERE location && ST_MakeEnvelope($1, $2, $3, $4, 4326)::geography`
	args := []any{box.MinLng, box.MinLat, box.MaxLng, box.MaxLat}

	query, args = appendCategoryFilter(query, args, categories)

	query += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args)+1)
	args = append(args, limit)

	return r.queryPois(ctx, query, args)
}

func appendCategoryFilter(query string, args []any, categories []model.PoiCategory) (string, []any) {
	if len(categories) == 0 {
		return query, args
	}
	cats := make([]string, len(categories))
	for i, c := range categories {
		cats[i] = string(c)
	}
	query += fmt.Sprintf(" AND category = ANY($%d)", len(args)+1)
	args = append(args, pq.Array(cats))
	return query, args
}

func (r *PostgisRepository) queryPois(ctx context.Context, query string, args []any) ([]model.Poi, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		r.logger.Warn("postgis query failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.KindStorage, "poi repository query failed", err)
	}
	defer rows.Close()

	var pois []model.Poi
	for rows.Next() {
		var row poiRow
		if err := rows.StructScan(&row); err != nil {
			return nil, apperr.Wrap(apperr.KindStorage, "poi row scan failed", err)
		}
		poi, err := row.toPoi()
		if err != nil {
			r.logger.Warn("skipping malformed poi row", zap.String("poi_id", row.ID), zap.Error(err))
			continue
		}
		pois = append(pois, poi)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "poi row iteration failed", err)
	}
	return pois, nil
}

func (r *PostgisRepository) Insert(ctx context.Context, poi model.Poi) (string, error) {
	query := `
		INSERT INTO pois (id, name, category, location, lat, lng, popularity, description, estimated_visit_minutes, osm_id)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, $5, $4, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query,
		poi.ID, poi.Name, string(poi.Category), poi.Location.Lng(), poi.Location.Lat(),
		poi.Popularity, nullableString(poi.Description), poi.EstimatedVisitMins, poi.OsmID)
	if err != nil {
		return "", apperr.Wrap(apperr.KindStorage, "poi insert failed", err)
	}
	return poi.ID, nil
}

func (r *PostgisRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM pois`); err != nil {
		return 0, apperr.Wrap(apperr.KindStorage, "poi count failed", err)
	}
	return count, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
