package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carefinder/backend/internal/models"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

const providerColumns = `id, kind, name, address, city, state, lat, lng, rating, specialties,
	specialization, qualification, experience_years, consultation_fee, hospital_name,
	phone, email, website, emergency_services, bed_count`

func (s *Store) InsertProviders(ctx context.Context, providers []models.Provider) (int64, error) {
	rows := make([][]any, 0, len(providers))
	for _, p := range providers {
		var lat, lng *float64
		if c := p.Location.Coordinates; c != nil {
			lat, lng = &c.Latitude, &c.Longitude
		}
		rows = append(rows, []any{
			p.ID, string(p.Kind), p.Name, p.Location.Address, p.Location.City, p.Location.State,
			lat, lng, p.Rating, p.Specialties, p.Specialization, p.Qualification,
			p.ExperienceYears, p.ConsultationFee, p.HospitalName,
			p.Contact.Phone, p.Contact.Email, p.Contact.Website, p.EmergencyServices, p.BedCount,
		})
	}
	cols := strings.Fields(strings.ReplaceAll(providerColumns, ",", " "))
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"providers"}, cols, pgx.CopyFromRows(rows))
}

func (s *Store) GetProvider(ctx context.Context, id string) (models.Provider, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE id = $1`, id)
	p, err := scanProvider(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Provider{}, ErrNotFound
		}
		return models.Provider{}, err
	}
	return p, nil
}

// FindProviders returns providers of one kind narrowed by the query's
// filters. City and region names match case-insensitively and exactly;
// the specialty matches as a substring of specialization or any specialty.
func (s *Store) FindProviders(ctx context.Context, q models.CandidateQuery) ([]models.Provider, error) {
	query, args := buildProviderQuery(q)
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func buildProviderQuery(q models.CandidateQuery) (string, []any) {
	args := []any{string(q.Kind)}
	wheres := []string{"kind = $1"}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if b := q.Box; b != nil {
		wheres = append(wheres, "lat IS NOT NULL AND lng IS NOT NULL",
			fmt.Sprintf("lat BETWEEN %s AND %s", arg(b.MinLat), arg(b.MaxLat)))
		switch {
		case b.MinLng <= -180 && b.MaxLng >= 180:
		case b.MinLng < -180:
			wheres = append(wheres, fmt.Sprintf("(lng >= %s OR lng <= %s)", arg(b.MinLng+360), arg(b.MaxLng)))
		case b.MaxLng > 180:
			wheres = append(wheres, fmt.Sprintf("(lng >= %s OR lng <= %s)", arg(b.MinLng), arg(b.MaxLng-360)))
		default:
			wheres = append(wheres, fmt.Sprintf("lng BETWEEN %s AND %s", arg(b.MinLng), arg(b.MaxLng)))
		}
	}
	if patterns := exactPatterns(q.Cities); len(patterns) > 0 {
		wheres = append(wheres, fmt.Sprintf("btrim(city) ILIKE ANY(%s)", arg(patterns)))
	}
	if patterns := exactPatterns(q.Regions); len(patterns) > 0 {
		wheres = append(wheres, fmt.Sprintf("btrim(state) ILIKE ANY(%s)", arg(patterns)))
	}
	if sp := strings.TrimSpace(q.Specialty); sp != "" {
		p := arg("%" + escapeLike(sp) + "%")
		wheres = append(wheres, fmt.Sprintf("(specialization ILIKE %s OR EXISTS (SELECT 1 FROM unnest(specialties) AS sp WHERE sp ILIKE %s))", p, p))
	}
	if len(q.ExcludeIDs) > 0 {
		wheres = append(wheres, fmt.Sprintf("NOT (id = ANY(%s))", arg(q.ExcludeIDs)))
	}

	query := `SELECT ` + providerColumns + ` FROM providers WHERE ` + strings.Join(wheres, " AND ")
	if n := q.Near; n != nil {
		lat, lng := arg(n.Latitude), arg(n.Longitude)
		query += fmt.Sprintf(" ORDER BY (lat - %s)^2 + ((lng - %s) * cos(radians(%s)))^2 ASC NULLS LAST, id ASC", lat, lng, lat)
	} else {
		query += " ORDER BY rating DESC NULLS LAST, id ASC"
	}
	if q.Limit > 0 {
		query += " LIMIT " + arg(q.Limit)
	}
	return query, args
}

func scanProvider(row pgx.Row) (models.Provider, error) {
	var (
		p        models.Provider
		kind     string
		lat, lng *float64
	)
	var address, city, state, specialization, qualification, hospital, phone, email, website *string
	err := row.Scan(&p.ID, &kind, &p.Name, &address, &city, &state, &lat, &lng, &p.Rating, &p.Specialties,
		&specialization, &qualification, &p.ExperienceYears, &p.ConsultationFee, &hospital,
		&phone, &email, &website, &p.EmergencyServices, &p.BedCount)
	if err != nil {
		return models.Provider{}, err
	}
	p.Kind = models.ProviderKind(kind)
	p.Location = models.Location{
		Address: derefString(address),
		City:    derefString(city),
		State:   derefString(state),
	}
	if lat != nil && lng != nil {
		p.Location.Coordinates = &models.Coordinates{Latitude: *lat, Longitude: *lng}
	}
	p.Specialization = derefString(specialization)
	p.Qualification = derefString(qualification)
	p.HospitalName = derefString(hospital)
	p.Contact = models.Contact{
		Phone:   derefString(phone),
		Email:   derefString(email),
		Website: derefString(website),
	}
	return p, nil
}

func exactPatterns(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, escapeLike(n))
		}
	}
	return out
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
