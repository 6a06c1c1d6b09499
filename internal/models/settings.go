package models

// ServerStatus is the storefront availability shown to shoppers.
type ServerStatus string

const (
	ServerOnline      ServerStatus = "ONLINE"
	ServerMaintenance ServerStatus = "MAINTENANCE"
	ServerOffline     ServerStatus = "OFFLINE"
)

// SiteSettings is the singleton settings row (id = 1).
type SiteSettings struct {
	ID                int          `json:"-" gorm:"primaryKey;column:id;default:1"`
	BinanceWallet     string       `json:"binanceWallet" gorm:"column:binancewallet"`
	BinanceQR         string       `json:"binanceQR" gorm:"column:binanceqr"`
	RobloxGamePassURL string       `json:"robloxGamePassUrl" gorm:"column:robloxgamepassurl"`
	ImportantNote     string       `json:"importantNote" gorm:"column:importantnote"`
	WelcomeMessage    string       `json:"welcomeMessage" gorm:"column:welcomemessage"`
	ServerStatus      ServerStatus `json:"serverStatus" gorm:"column:serverstatus"`
	EmailjsServiceID  string       `json:"emailjsServiceId" gorm:"column:emailjsserviceid"`
	EmailjsTemplateID string       `json:"emailjsTemplateId" gorm:"column:emailjstemplateid"`
	EmailjsPublicKey  string       `json:"emailjsPublicKey" gorm:"column:emailjspublickey"`
}

func (SiteSettings) TableName() string { return "site_settings" }
