// Package marker defines the visualization marker payload broadcast by the
// registry. The registry itself never interprets these fields beyond copying
// them; they exist so downstream visualization consumers get a stable wire
// shape.
package marker

// Shape constants for Marker.Shape.
const (
	ShapeArrow    uint8 = 0
	ShapeCube     uint8 = 1
	ShapeSphere   uint8 = 2
	ShapeCylinder uint8 = 3
	ShapeLine     uint8 = 4
	ShapePoints   uint8 = 5
	ShapeText     uint8 = 9
)

// Action constants for Marker.Action. The registry stamps these during
// commit: ActionAdd on first materialization of a name, ActionModify when an
// upsert replaces an existing committed entry.
const (
	ActionAdd    uint8 = 0
	ActionModify uint8 = 1
	ActionDelete uint8 = 2
)

// Vector3 is a 3D vector (position, scale).
type Vector3 struct {
	X float64 `msgpack:"x" json:"x"`
	Y float64 `msgpack:"y" json:"y"`
	Z float64 `msgpack:"z" json:"z"`
}

// Quaternion is an orientation in quaternion form.
type Quaternion struct {
	X float64 `msgpack:"x" json:"x"`
	Y float64 `msgpack:"y" json:"y"`
	Z float64 `msgpack:"z" json:"z"`
	W float64 `msgpack:"w" json:"w"`
}

// Pose combines position and orientation relative to the marker's frame.
type Pose struct {
	Position    Vector3    `msgpack:"position" json:"position"`
	Orientation Quaternion `msgpack:"orientation" json:"orientation"`
}

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R float32 `msgpack:"r" json:"r"`
	G float32 `msgpack:"g" json:"g"`
	B float32 `msgpack:"b" json:"b"`
	A float32 `msgpack:"a" json:"a"`
}

// Marker is a single visualization object. Markers are addressed by name in
// the registry; the name is not part of the payload itself.
type Marker struct {
	FrameID    string    `msgpack:"frame" json:"frame_id"`
	Shape      uint8     `msgpack:"shape" json:"shape"`
	Action     uint8     `msgpack:"action" json:"action"`
	Pose       Pose      `msgpack:"pose" json:"pose"`
	Scale      Vector3   `msgpack:"scale" json:"scale"`
	Color      Color     `msgpack:"color" json:"color"`
	Text       string    `msgpack:"text,omitempty" json:"text,omitempty"`
	Points     []Vector3 `msgpack:"points,omitempty" json:"points,omitempty"`
	LifetimeMS int64     `msgpack:"lifetime_ms,omitempty" json:"lifetime_ms,omitempty"`
}
