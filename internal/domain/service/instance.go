package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/vatbrz/staffing-bot/internal/domain/contract"
)

type Instance struct {
	Booking    contract.BookingService
	Dispatcher *Dispatcher
}

func NewInstance(dm contract.DataManager, messenger contract.Messenger, log *zap.Logger, pollInterval time.Duration) *Instance {
	return &Instance{
		Booking:    newBooking(dm, log),
		Dispatcher: newDispatcher(dm, messenger, log, pollInterval),
	}
}
