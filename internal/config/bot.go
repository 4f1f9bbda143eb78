package config

// Bot операционный чат с алертами. Токен опционален: без него сервис
// работает, просто молчит.
type Bot struct {
	Token  string `env:"BOT_TOKEN" json:"-"`
	ChatID int64  `env:"BOT_CHAT_ID"`
}
