package server

// Данный сервер просто объединяет специфичные HTTP сервера, отвечающие за обработку конкретных сущностей
type Server struct {
	OfferServer
	DraftServer
}

func NewServer(
	offerServer OfferServer,
	draftServer DraftServer,
) Server {
	return Server{
		OfferServer: offerServer,
		DraftServer: draftServer,
	}
}
