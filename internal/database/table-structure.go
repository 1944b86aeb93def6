package database

import "fmt"

var tableDefinitions = map[string]string{
	"users": `CREATE TABLE IF NOT EXISTS users (
                   user_id BIGINT NOT NULL,
                   username VARCHAR(64) NOT NULL DEFAULT '',
                   name VARCHAR(255) NOT NULL DEFAULT '',
                   gender VARCHAR(16) NOT NULL DEFAULT '',
                   city VARCHAR(128) NOT NULL DEFAULT '',
                   project VARCHAR(255) NOT NULL DEFAULT '',
                   show_datetime VARCHAR(32) NOT NULL DEFAULT '',
                   scenario VARCHAR(32) NOT NULL DEFAULT '',
                   birthday VARCHAR(16) NOT NULL DEFAULT '',
                   phone VARCHAR(32) NOT NULL DEFAULT '',
                   email VARCHAR(255) NOT NULL DEFAULT '',
                   email_confirmed TINYINT(1) NOT NULL DEFAULT 0,
                   consent TINYINT(1) NOT NULL DEFAULT 0,
                   promo_code VARCHAR(64) NOT NULL DEFAULT '',
                   promo_issued TINYINT(1) NOT NULL DEFAULT 0,
                   utm_source VARCHAR(255) NOT NULL DEFAULT '',
                   utm_medium VARCHAR(255) NOT NULL DEFAULT '',
                   utm_campaign VARCHAR(255) NOT NULL DEFAULT '',
                   utm_term VARCHAR(255) NOT NULL DEFAULT '',
                   utm_content VARCHAR(255) NOT NULL DEFAULT '',
                   yandex_id VARCHAR(64) NOT NULL DEFAULT '',
                   roistat_visit VARCHAR(64) NOT NULL DEFAULT '',
                   created_at VARCHAR(32) NOT NULL DEFAULT '',
                   updated_at VARCHAR(32) NOT NULL DEFAULT '',
                   PRIMARY KEY (user_id)
                   ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	"user_genres": `CREATE TABLE IF NOT EXISTS user_genres (
                   id BIGINT NOT NULL AUTO_INCREMENT,
                   user_id BIGINT NOT NULL,
                   genre VARCHAR(64) NOT NULL,
                   PRIMARY KEY (id),
                   UNIQUE KEY uq_user_genre (user_id, genre)
                   ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

func (s *MySql) createTables() error {
	for name, ddl := range tableDefinitions {
		if _, err := s.db.Exec(ddl); err != nil {
			return fmt.Errorf("create table %s: %w", name, err)
		}
	}
	return nil
}
