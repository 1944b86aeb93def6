package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Listen struct {
	BindIp   string `yaml:"bind_ip" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env-default:"8080"`
	ApiToken string `yaml:"api_token" env:"API_TOKEN" env-default:""`
}

type BotConfig struct {
	Token    string  `yaml:"token" env:"BOT_TOKEN" env-default:""`
	Username string  `yaml:"username" env-default:"theatrfest_help_bot"`
	AdminIds []int64 `yaml:"admin_ids" env:"ADMIN_IDS"`
}

type MySqlConfig struct {
	HostName string `yaml:"host" env-default:"localhost"`
	Port     string `yaml:"port" env-default:"3306"`
	UserName string `yaml:"user" env-default:""`
	Password string `yaml:"password" env:"MYSQL_PASSWORD" env-default:""`
	Database string `yaml:"database" env-default:"teatrlead"`
}

type MongoConfig struct {
	Enabled  bool   `yaml:"enabled" env-default:"false"`
	Host     string `yaml:"host" env-default:"localhost"`
	Port     string `yaml:"port" env-default:"27017"`
	User     string `yaml:"user" env-default:""`
	Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:""`
	Database string `yaml:"database" env-default:"teatrlead"`
}

// CRMFields holds backend-specific custom-field identifiers for contact and
// deal records.
type CRMFields struct {
	ContactBirthday   int64 `yaml:"contact_birthday" env-default:"999996"`
	ContactGender     int64 `yaml:"contact_gender" env-default:"999997"`
	ContactTgUsername int64 `yaml:"contact_tg_username" env-default:"999998"`
	ContactTgId       int64 `yaml:"contact_tg_id" env-default:"999999"`
	LeadProject       int64 `yaml:"lead_project" env-default:"123459"`
	LeadShowDatetime  int64 `yaml:"lead_show_datetime" env-default:"123460"`
	LeadPromoCode     int64 `yaml:"lead_promo_code" env-default:"123461"`
	LeadScenario      int64 `yaml:"lead_scenario" env-default:"123464"`
}

type CRMConfig struct {
	Subdomain    string `yaml:"subdomain" env-default:""`
	ClientId     string `yaml:"client_id" env-default:""`
	ClientSecret string `yaml:"client_secret" env-default:""`
	RedirectUri  string `yaml:"redirect_uri" env-default:""`
	AccessToken  string `yaml:"access_token" env-default:""`
	RefreshToken string `yaml:"refresh_token" env-default:""`
	// ResponsibleId, when non-zero, is assigned to every created deal.
	ResponsibleId int64 `yaml:"responsible_id" env-default:"0"`
	// PipelineId, when non-zero, is used to look up the "ready for work"
	// stage for created deals.
	PipelineId int64     `yaml:"pipeline_id" env-default:"0"`
	Fields     CRMFields `yaml:"fields"`
}

type Config struct {
	Env        string      `yaml:"env" env-default:"local"`
	Listen     Listen      `yaml:"listen"`
	Bot        BotConfig   `yaml:"bot"`
	MySql      MySqlConfig `yaml:"mysql"`
	Mongo      MongoConfig `yaml:"mongo"`
	CRMCity1   CRMConfig   `yaml:"crm_city1"`
	CRMCity2   CRMConfig   `yaml:"crm_city2"`
	CRMDefault string      `yaml:"crm_default" env-default:"city2"`
	TicketURL  string      `yaml:"ticket_url" env-default:"https://love-teatrfest.ru"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("config: %s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
