// Package client implements the high level API for driving a robot
// simulation station over its socket protocol.
//
// A Client wraps one connection and issues command frames: a keyword line,
// the command's typed arguments, the results and a trailing status code.
// Items returned by lookups and Add operations are lightweight references
// into the remote station tree; all state lives on the server side.
//
// Typical use:
//
//	c := client.New(common.NewClientConfig())
//	robot, err := c.ItemByName("Arm", common.ItemTypeRobot)
//	if err != nil || !robot.Valid() {
//		// handle missing robot
//	}
//	robot.MoveJ(client.JointTarget(mat.Joints{0, -90, 90, 0, 90, 0}))
//	robot.WaitMove(5 * time.Minute)
package client
