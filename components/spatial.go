package components

// Position represents an entity's world position. Y is up.
type Position struct {
	X, Y, Z float32
}

// Velocity represents an entity's velocity.
type Velocity struct {
	X, Y, Z float32
}

// Rotation represents an entity's heading around the vertical axis.
type Rotation struct {
	Yaw float32 // radians
}
