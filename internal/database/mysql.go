package database

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"teatrlead/entity"
	"teatrlead/internal/config"
	"teatrlead/lib/clock"
)

// MySql persists visitor profiles and their genre selections. One row per
// Telegram identity in `users`, one row per selected genre in `user_genres`.
type MySql struct {
	db         *sql.DB
	statements map[string]*sql.Stmt
	mu         sync.Mutex
}

func NewSQLClient(conf *config.Config) (*MySql, error) {
	connectionURI := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		conf.MySql.UserName, conf.MySql.Password, conf.MySql.HostName, conf.MySql.Port, conf.MySql.Database)
	db, err := sql.Open("mysql", connectionURI)
	if err != nil {
		return nil, fmt.Errorf("sql connect: %w", err)
	}

	// try to ping three times with a 30-second interval; wait for a database to start
	for i := 0; i < 3; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		if i == 2 {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		time.Sleep(30 * time.Second)
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &MySql{
		db:         db,
		statements: make(map[string]*sql.Stmt),
	}

	if err = sdb.createTables(); err != nil {
		return nil, err
	}

	return sdb, nil
}

func (s *MySql) Close() {
	s.closeStmt()
	_ = s.db.Close()
}

// Register creates the visitor row on a bare /start. Insert only: an
// existing row, possibly carrying tracked-link attribution, stays untouched.
func (s *MySql) Register(userId int64, username string) error {
	stmt, err := s.stmtRegister()
	if err != nil {
		return err
	}
	now := clock.Now()
	_, err = stmt.Exec(userId, username, now, now)
	return err
}

// UpsertFromLink registers first contact or refreshes show attribution on a
// repeat visit. Questionnaire answers already stored are never overwritten
// here; only the show context and attribution move with the new link.
func (s *MySql) UpsertFromLink(userId int64, username string, tp entity.TrackingParams) error {
	stmt, err := s.stmtUpsertFromLink()
	if err != nil {
		return err
	}
	now := clock.Now()
	_, err = stmt.Exec(
		userId, username,
		tp.City, tp.Project, tp.ShowDatetime,
		tp.UtmSource, tp.UtmMedium, tp.UtmCampaign, tp.UtmTerm, tp.UtmContent,
		tp.YandexID, tp.RoistatVisit,
		now, now,
	)
	return err
}

func (s *MySql) Profile(userId int64) (*entity.VisitorProfile, error) {
	stmt, err := s.stmtSelectProfile()
	if err != nil {
		return nil, err
	}
	var v entity.VisitorProfile
	err = stmt.QueryRow(userId).Scan(
		&v.UserID, &v.Username, &v.Name, &v.Gender,
		&v.City, &v.Project, &v.ShowDatetime,
		&v.Scenario, &v.Birthday, &v.Phone, &v.Email,
		&v.EmailConfirmed, &v.Consent,
		&v.PromoCode, &v.PromoIssued,
		&v.UtmSource, &v.UtmMedium, &v.UtmCampaign, &v.UtmTerm, &v.UtmContent,
		&v.YandexID, &v.RoistatVisit,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v.Genres, err = s.Genres(userId)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *MySql) SetName(userId int64, name string) error {
	return s.setField("name", userId, name)
}

func (s *MySql) SetGender(userId int64, gender string) error {
	return s.setField("gender", userId, gender)
}

func (s *MySql) SetScenario(userId int64, scenario string) error {
	return s.setField("scenario", userId, scenario)
}

func (s *MySql) SetBirthday(userId int64, birthday string) error {
	return s.setField("birthday", userId, birthday)
}

func (s *MySql) SetPhone(userId int64, phone string) error {
	return s.setField("phone", userId, phone)
}

func (s *MySql) SetEmail(userId int64, email string) error {
	return s.setField("email", userId, email)
}

func (s *MySql) SetEmailConfirmed(userId int64, confirmed bool) error {
	return s.setField("email_confirmed", userId, confirmed)
}

func (s *MySql) SetConsent(userId int64, consent bool) error {
	return s.setField("consent", userId, consent)
}

// SetPromoCode records the issued code and marks delivery so the code is
// reused, not regenerated, on repeat requests.
func (s *MySql) SetPromoCode(userId int64, code string) error {
	stmt, err := s.stmtSetPromoCode()
	if err != nil {
		return err
	}
	_, err = stmt.Exec(code, clock.Now(), userId)
	return err
}

func (s *MySql) AddGenre(userId int64, genre string) error {
	stmt, err := s.stmtInsertGenre()
	if err != nil {
		return err
	}
	_, err = stmt.Exec(userId, genre)
	return err
}

func (s *MySql) RemoveGenre(userId int64, genre string) error {
	stmt, err := s.stmtDeleteGenre()
	if err != nil {
		return err
	}
	_, err = stmt.Exec(userId, genre)
	return err
}

func (s *MySql) Genres(userId int64) ([]string, error) {
	stmt, err := s.stmtSelectGenres()
	if err != nil {
		return nil, err
	}
	rows, err := stmt.Query(userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []string
	for rows.Next() {
		var genre string
		if err = rows.Scan(&genre); err != nil {
			return nil, err
		}
		genres = append(genres, genre)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return genres, nil
}

// ListProfiles loads every visitor record with genre selections attached.
// Used by the statistics aggregator; the audience of a single bot fits in
// memory comfortably.
func (s *MySql) ListProfiles() ([]*entity.VisitorProfile, error) {
	stmt, err := s.stmtSelectAllProfiles()
	if err != nil {
		return nil, err
	}
	rows, err := stmt.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byId := make(map[int64]*entity.VisitorProfile)
	var profiles []*entity.VisitorProfile
	for rows.Next() {
		var v entity.VisitorProfile
		if err = rows.Scan(
			&v.UserID, &v.Username, &v.Name, &v.Gender,
			&v.City, &v.Project, &v.ShowDatetime,
			&v.Scenario, &v.Birthday, &v.Phone, &v.Email,
			&v.EmailConfirmed, &v.Consent,
			&v.PromoCode, &v.PromoIssued,
			&v.UtmSource, &v.UtmMedium, &v.UtmCampaign, &v.UtmTerm, &v.UtmContent,
			&v.YandexID, &v.RoistatVisit,
			&v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		byId[v.UserID] = &v
		profiles = append(profiles, &v)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	genreRows, err := s.db.Query("SELECT user_id, genre FROM user_genres ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer genreRows.Close()
	for genreRows.Next() {
		var userId int64
		var genre string
		if err = genreRows.Scan(&userId, &genre); err != nil {
			return nil, err
		}
		if v, ok := byId[userId]; ok {
			v.Genres = append(v.Genres, genre)
		}
	}
	if err = genreRows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}
