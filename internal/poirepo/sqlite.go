package poirepo

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"go.uber.org/zap"

	"github.com/watnow/routeloop/internal/apperr"
	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
	"github.com/watnow/routeloop/internal/opmetrics"
)

// SqliteRepository is the embedded, single-region backend described in
// §6's region database layout: a flat `pois` table plus an R-tree virtual
// table (`pois_rtree`) used as a bounding-envelope pre-filter, with the
// true great-circle distance filter applied in Go after the SQL round
// trip, per §4.1's spatial-indexing contract.
type SqliteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSqliteRepository opens (or attaches to an already-open) region
// database file using the pure-Go modernc.org/sqlite driver, chosen
// because no retrieved example repo carries a CGo-free SQLite driver and
// the on-device deployment target cannot assume a CGo toolchain.
func NewSqliteRepository(db *sql.DB, logger *zap.Logger) *SqliteRepository {
	return &SqliteRepository{db: db, logger: logger}
}

// EnsureSchema creates the region database layout from §6 if absent.
func (r *SqliteRepository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pois (
			rowid_id INTEGER PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			lat REAL NOT NULL,
			lng REAL NOT NULL,
			popularity INTEGER NOT NULL,
			description TEXT,
			estimated_visit_minutes INTEGER,
			osm_id INTEGER UNIQUE
		)`,
		// The rtree's leading column is always an integer rowid, never a
		// TEXT key: it is keyed to pois.rowid_id, not the UUID pois.id.
		`CREATE VIRTUAL TABLE IF NOT EXISTS pois_rtree USING rtree(
			id, min_lat, max_lat, min_lng, max_lng
		)`,
		`CREATE TABLE IF NOT EXISTS region_meta (key TEXT PRIMARY KEY, value TEXT)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return apperr.Wrap(apperr.KindStorage, "sqlite schema setup failed", err)
		}
	}
	return nil
}

func (r *SqliteRepository) FindWithinRadius(ctx context.Context, center geo.Coordinates, radiusMeters float64, categories []model.PoiCategory, limit int) ([]model.Poi, error) {
	start := time.Now()
	defer func() {
		opmetrics.RepositoryQueryDuration.WithLabelValues("find_within_radius").Observe(time.Since(start).Seconds())
	}()

	// Overapproximate with the bounding envelope via the rtree index,
	// then apply the true haversine filter below, per §4.1.
	envelope := geo.BoundingBox{MinLat: center.Lat(), MaxLat: center.Lat(), MinLng: center.Lng(), MaxLng: center.Lng()}.Expand(radiusMeters)

	rows, err := r.queryEnvelope(ctx, envelope, categories)
	if err != nil {
		return nil, err
	}

	filtered := make([]model.Poi, 0, len(rows))
	for _, p := range rows {
		if center.HaversineMeters(p.Location) <= radiusMeters {
			filtered = append(filtered, p)
		}
	}
	sortByDistance(filtered, center)
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (r *SqliteRepository) FindInBbox(ctx context.Context, box geo.BoundingBox, categories []model.PoiCategory, limit int) ([]model.Poi, error) {
	start := time.Now()
	defer func() {
		opmetrics.RepositoryQueryDuration.WithLabelValues("find_in_bbox").Observe(time.Since(start).Seconds())
	}()

	rows, err := r.queryEnvelope(ctx, box, categories)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *SqliteRepository) queryEnvelope(ctx context.Context, box geo.BoundingBox, categories []model.PoiCategory) ([]model.Poi, error) {
	query := `
		SELECT p.id, p.name, p.category, p.lat, p.lng, p.popularity, p.description, p.estimated_visit_minutes, p.osm_id
		FROM pois p
		JOIN pois_rtree idx ON idx.id = p.rowid_id
		WHERE idx.min_lat <= ? AND idx.max_lat >= ? AND idx.min_lng <= ? AND idx.max_lng >= ?`
	args := []any{box.MaxLat, box.MinLat, box.MaxLng, box.MinLng}

	if len(categories) > 0 {
		placeholders := make([]string, len(categories))
		for i, c := range categories {
			placeholders[i] = "?"
			args = append(args, string(c))
		}
		query += fmt.Sprintf(" AND p.category IN (%s)", strings.Join(placeholders, ","))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Warn("sqlite query failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.KindStorage, "poi repository query failed", err)
	}
	defer rows.Close()

	var pois []model.Poi
	for rows.Next() {
		var (
			id, name, category      string
			lat, lng                float64
			popularity              int
			description             sql.NullString
			estimatedVisitMins      sql.NullInt64
			osmID                   sql.NullInt64
		)
		if err := rows.Scan(&id, &name, &category, &lat, &lng, &popularity, &description, &estimatedVisitMins, &osmID); err != nil {
			return nil, apperr.Wrap(apperr.KindStorage, "poi row scan failed", err)
		}
		coords, err := geo.NewCoordinates(lat, lng)
		if err != nil {
			r.logger.Warn("skipping malformed poi row", zap.String("poi_id", id), zap.Error(err))
			continue
		}
		poi, err := model.NewPoi(id, name, model.PoiCategory(category), coords, popularity)
		if err != nil {
			r.logger.Warn("skipping malformed poi row", zap.String("poi_id", id), zap.Error(err))
			continue
		}
		if description.Valid {
			poi.Description = description.String
		}
		if estimatedVisitMins.Valid {
			v := int(estimatedVisitMins.Int64)
			poi.EstimatedVisitMins = &v
		}
		if osmID.Valid {
			poi.OsmID = &osmID.Int64
		}
		pois = append(pois, poi)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "poi row iteration failed", err)
	}
	return pois, nil
}

func (r *SqliteRepository) Insert(ctx context.Context, poi model.Poi) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", apperr.Wrap(apperr.KindStorage, "poi insert failed to start transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO pois (id, name, category, lat, lng, popularity, description, estimated_visit_minutes, osm_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		poi.ID, poi.Name, string(poi.Category), poi.Location.Lat(), poi.Location.Lng(),
		poi.Popularity, nullableString(poi.Description), poi.EstimatedVisitMins, poi.OsmID)
	if err != nil {
		return "", apperr.Wrap(apperr.KindStorage, "poi insert failed", err)
	}

	// The rtree row is keyed to the integer rowid assigned above, not the
	// UUID: a TEXT key would coerce to rowid 0 for every row and collide.
	var rowID int64
	if err := tx.QueryRowContext(ctx, `SELECT rowid_id FROM pois WHERE id = ?`, poi.ID).Scan(&rowID); err != nil {
		return "", apperr.Wrap(apperr.KindStorage, "poi rowid lookup failed", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO pois_rtree (id, min_lat, max_lat, min_lng, max_lng)
		VALUES (?, ?, ?, ?, ?)`,
		rowID, poi.Location.Lat(), poi.Location.Lat(), poi.Location.Lng(), poi.Location.Lng())
	if err != nil {
		return "", apperr.Wrap(apperr.KindStorage, "poi rtree insert failed", err)
	}

	if err := tx.Commit(); err != nil {
		return "", apperr.Wrap(apperr.KindStorage, "poi insert commit failed", err)
	}
	return poi.ID, nil
}

func (r *SqliteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pois`).Scan(&count); err != nil {
		return 0, apperr.Wrap(apperr.KindStorage, "poi count failed", err)
	}
	return count, nil
}

func sortByDistance(pois []model.Poi, center geo.Coordinates) {
	sort.Slice(pois, func(i, j int) bool {
		return center.HaversineMeters(pois[i].Location) < center.HaversineMeters(pois[j].Location)
	})
}
