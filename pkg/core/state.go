package core

// NodeState is a telemetry snapshot of one UAV at a point in simulated time.
type NodeState struct {
	NodeName          string     `json:"nodeName"`
	SimTime           float64    `json:"simTime"` // simulated seconds
	Position          Position3D `json:"position"`
	Yaw               float64    `json:"yaw"`        // degrees, [0,360)
	Pitch             float64    `json:"pitch"`      // degrees
	ClimbAngle        float64    `json:"climbAngle"` // degrees, (-90,90]
	Speed             float64    `json:"speed"`      // m/s
	BatteryRemaining  float64    `json:"batteryRemaining"` // mAh
	BatteryPercentage float64    `json:"batteryPercentage"`
	CommandType       string     `json:"commandType"` // active CEE type, "" when idle between commands
	MissionID         string     `json:"missionId"`   // empty when no mission is assigned
}
