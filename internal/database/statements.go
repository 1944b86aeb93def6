package database

import (
	"database/sql"
	"fmt"

	"teatrlead/lib/clock"
)

func (s *MySql) prepareStmt(name, query string) (*sql.Stmt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stmt, ok := s.statements[name]; ok {
		return stmt, nil
	}

	stmt, err := s.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("prepare statement [%s]: %w", name, err)
	}

	s.statements[name] = stmt
	return stmt, nil
}

func (s *MySql) closeStmt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, stmt := range s.statements {
		_ = stmt.Close()
		delete(s.statements, name)
	}
}

const profileColumns = `user_id, username, name, gender,
                   city, project, show_datetime,
                   scenario, birthday, phone, email,
                   email_confirmed, consent,
                   promo_code, promo_issued,
                   utm_source, utm_medium, utm_campaign, utm_term, utm_content,
                   yandex_id, roistat_visit,
                   created_at, updated_at`

// profileFields whitelists the columns reachable through setField. A field
// name outside this set is a programming error, not user input.
var profileFields = map[string]bool{
	"name":            true,
	"gender":          true,
	"scenario":        true,
	"birthday":        true,
	"phone":           true,
	"email":           true,
	"email_confirmed": true,
	"consent":         true,
}

func (s *MySql) setField(field string, userId int64, value interface{}) error {
	if !profileFields[field] {
		return fmt.Errorf("unknown profile field: %s", field)
	}
	query := fmt.Sprintf(
		`UPDATE users SET %s = ?, updated_at = ? WHERE user_id = ?`,
		field,
	)
	stmt, err := s.prepareStmt("setField_"+field, query)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(value, clock.Now(), userId)
	return err
}

func (s *MySql) stmtRegister() (*sql.Stmt, error) {
	query := `INSERT IGNORE INTO users (user_id, username, created_at, updated_at)
	                   VALUES (?, ?, ?, ?)`
	return s.prepareStmt("register", query)
}

func (s *MySql) stmtUpsertFromLink() (*sql.Stmt, error) {
	query := `INSERT INTO users (
                   user_id, username,
                   city, project, show_datetime,
                   utm_source, utm_medium, utm_campaign, utm_term, utm_content,
                   yandex_id, roistat_visit,
                   created_at, updated_at)
                   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
                   ON DUPLICATE KEY UPDATE
                   username = VALUES(username),
                   city = VALUES(city),
                   project = VALUES(project),
                   show_datetime = VALUES(show_datetime),
                   utm_source = VALUES(utm_source),
                   utm_medium = VALUES(utm_medium),
                   utm_campaign = VALUES(utm_campaign),
                   utm_term = VALUES(utm_term),
                   utm_content = VALUES(utm_content),
                   yandex_id = VALUES(yandex_id),
                   roistat_visit = VALUES(roistat_visit),
                   updated_at = VALUES(updated_at)`
	return s.prepareStmt("upsertFromLink", query)
}

func (s *MySql) stmtSelectProfile() (*sql.Stmt, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE user_id = ?`, profileColumns)
	return s.prepareStmt("selectProfile", query)
}

func (s *MySql) stmtSelectAllProfiles() (*sql.Stmt, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at`, profileColumns)
	return s.prepareStmt("selectAllProfiles", query)
}

func (s *MySql) stmtSetPromoCode() (*sql.Stmt, error) {
	query := `UPDATE users SET
                   promo_code = ?,
                   promo_issued = 1,
                   updated_at = ?
                   WHERE user_id = ?`
	return s.prepareStmt("setPromoCode", query)
}

func (s *MySql) stmtInsertGenre() (*sql.Stmt, error) {
	query := `INSERT IGNORE INTO user_genres (user_id, genre) VALUES (?, ?)`
	return s.prepareStmt("insertGenre", query)
}

func (s *MySql) stmtDeleteGenre() (*sql.Stmt, error) {
	query := `DELETE FROM user_genres WHERE user_id = ? AND genre = ?`
	return s.prepareStmt("deleteGenre", query)
}

func (s *MySql) stmtSelectGenres() (*sql.Stmt, error) {
	query := `SELECT genre FROM user_genres WHERE user_id = ? ORDER BY id`
	return s.prepareStmt("selectGenres", query)
}
