package ecs

// UpdateFrame is handed to every system for one scheduler pass.
// DeltaTime is the measured duration of the previous frame in seconds.
type UpdateFrame struct {
	DeltaTime float64
	Phase     string
	Commands  *Commands
	Storage   *Storage
}

func newUpdateFrame(dt float64, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  newCommands(),
		Storage:   storage,
	}
}
