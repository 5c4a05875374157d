// Command armctl talks to the arm controller over its serial link (or a
// TCP-served simulator) and exposes the command set on the command line,
// plus a serve mode that publishes the HTTP/websocket bridge.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/host/arm"
	"github.com/PanditAdityaJi/STM32-Robotic-Arm/host/bridge"
	"github.com/PanditAdityaJi/STM32-Robotic-Arm/host/serial"
)

func main() {
	app := cli.NewApp()
	app.Name = "armctl"
	app.Usage = "Control and monitor the robotic arm"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "device, d",
			Value: "/dev/ttyUSB0",
			Usage: "Serial device of the controller, or host:port of a simulator",
		},
		cli.IntFlag{
			Name:  "baud, b",
			Value: 115200,
			Usage: "Serial baud rate",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Value: arm.DefaultTimeout,
			Usage: "Response timeout per command",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "ports",
			Usage:  "List serial ports present on the system",
			Action: portsCommand,
		},
		{
			Name:   "ping",
			Usage:  "Check that the controller responds",
			Action: withClient(pingCommand),
		},
		{
			Name:      "move",
			Usage:     "Command one joint to an absolute angle",
			ArgsUsage: "<joint 0-5> <angle radians>",
			Action:    withClient(moveCommand),
		},
		{
			Name:      "speed",
			Usage:     "Set the motion rate limit",
			ArgsUsage: "<rate rad/s>",
			Action:    withClient(speedCommand),
		},
		{
			Name:      "home",
			Usage:     "Home all joints, or one joint if given",
			ArgsUsage: "[joint 0-5]",
			Action:    withClient(homeCommand),
		},
		{
			Name:   "stop",
			Usage:  "Halt all motion immediately",
			Action: withClient(stopCommand),
		},
		{
			Name:   "position",
			Usage:  "Print the current joint angles",
			Action: withClient(positionCommand),
		},
		{
			Name:  "telemetry",
			Usage: "Print one telemetry snapshot, or stream with --watch",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "watch, w",
					Usage: "Keep polling until interrupted",
				},
				cli.DurationFlag{
					Name:  "interval",
					Value: bridge.DefaultPollInterval,
					Usage: "Poll interval when watching",
				},
			},
			Action: withClient(telemetryCommand),
		},
		{
			Name:      "trajectory",
			Usage:     "Upload and run a timed trajectory from a JSON file",
			ArgsUsage: "<points.json>",
			Action:    withClient(trajectoryCommand),
		},
		{
			Name:  "serve",
			Usage: "Start the HTTP/websocket bridge",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "listen, l",
					Value: "127.0.0.1:8000",
					Usage: "HTTP listening address",
				},
			},
			Action: withClient(serveCommand),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

// connect opens the controller link named by the global flags. A device
// containing a colon is dialed as TCP (the simulator), anything else is
// opened as a serial port.
func connect(ctx *cli.Context) (*arm.Client, error) {
	device := ctx.GlobalString("device")
	timeout := ctx.GlobalDuration("timeout")

	if strings.Contains(device, ":") {
		conn, err := net.Dial("tcp", device)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", device, err)
		}
		return arm.NewClient(conn, arm.WithTimeout(timeout)), nil
	}

	cfg := serial.DefaultConfig(device)
	cfg.Baud = ctx.GlobalInt("baud")
	cfg.ReadTimeout = 0 // the read loop blocks
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	return arm.NewClient(port, arm.WithTimeout(timeout)), nil
}

// withClient wraps a command action with connection setup and teardown.
func withClient(action func(*cli.Context, *arm.Client) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		client, err := connect(ctx)
		if err != nil {
			return err
		}
		defer client.Close()
		return action(ctx, client)
	}
}

func portsCommand(ctx *cli.Context) error {
	ports, err := serial.Enumerate()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}
	for _, p := range ports {
		if p.IsUSB {
			fmt.Printf("%s\tUSB %s:%s %s (serial %s)\n", p.Device, p.VID, p.PID, p.Product, p.SerialNumber)
		} else {
			fmt.Println(p.Device)
		}
	}
	return nil
}

func pingCommand(ctx *cli.Context, client *arm.Client) error {
	start := time.Now()
	if err := client.Ping(); err != nil {
		return err
	}
	fmt.Printf("controller alive (%.1fms)\n", float64(time.Since(start).Microseconds())/1000)
	return nil
}

func moveCommand(ctx *cli.Context, client *arm.Client) error {
	if ctx.NArg() != 2 {
		return cli.NewExitError("usage: move <joint> <angle>", 1)
	}
	joint, err := strconv.Atoi(ctx.Args().Get(0))
	if err != nil {
		return fmt.Errorf("bad joint %q: %w", ctx.Args().Get(0), err)
	}
	angle, err := strconv.ParseFloat(ctx.Args().Get(1), 64)
	if err != nil {
		return fmt.Errorf("bad angle %q: %w", ctx.Args().Get(1), err)
	}
	return client.SetPosition(joint, angle)
}

func speedCommand(ctx *cli.Context, client *arm.Client) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("usage: speed <rate>", 1)
	}
	rate, err := strconv.ParseFloat(ctx.Args().Get(0), 64)
	if err != nil {
		return fmt.Errorf("bad rate %q: %w", ctx.Args().Get(0), err)
	}
	return client.SetSpeed(rate)
}

func homeCommand(ctx *cli.Context, client *arm.Client) error {
	if ctx.NArg() == 0 {
		return client.Home()
	}
	joint, err := strconv.Atoi(ctx.Args().Get(0))
	if err != nil {
		return fmt.Errorf("bad joint %q: %w", ctx.Args().Get(0), err)
	}
	return client.HomeJoint(joint)
}

func stopCommand(ctx *cli.Context, client *arm.Client) error {
	return client.Stop()
}

func positionCommand(ctx *cli.Context, client *arm.Client) error {
	angles, err := client.GetPosition()
	if err != nil {
		return err
	}
	for j, a := range angles {
		fmt.Printf("joint %d: %+.4f rad\n", j, a)
	}
	return nil
}

func telemetryCommand(ctx *cli.Context, client *arm.Client) error {
	printOne := func() error {
		tele, err := client.GetSensorData()
		if err != nil {
			return err
		}
		fmt.Printf("orientation: roll %+.3f pitch %+.3f yaw %+.3f\n", tele.Roll, tele.Pitch, tele.Yaw)
		for j, joint := range tele.Joints {
			limit := ""
			if joint.AtLimit {
				limit = "  AT LIMIT"
			}
			fmt.Printf("joint %d: pos %6d ticks  vel %6d t/s%s\n", j, joint.Position, joint.Velocity, limit)
		}
		return nil
	}

	if !ctx.Bool("watch") {
		return printOne()
	}
	ticker := time.NewTicker(ctx.Duration("interval"))
	defer ticker.Stop()
	for range ticker.C {
		if err := printOne(); err != nil {
			return err
		}
		fmt.Println()
	}
	return nil
}

// trajectoryFile is the on-disk format for the trajectory command.
type trajectoryFile struct {
	Points []struct {
		Angles [6]float64 `json:"angles"`
		HoldMS uint16     `json:"hold_ms"`
	} `json:"points"`
}

func trajectoryCommand(ctx *cli.Context, client *arm.Client) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("usage: trajectory <points.json>", 1)
	}
	data, err := os.ReadFile(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	var file trajectoryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse %s: %w", ctx.Args().Get(0), err)
	}
	points := make([]arm.TimedWaypoint, len(file.Points))
	for i, p := range file.Points {
		points[i] = arm.TimedWaypoint{
			Angles: p.Angles,
			Hold:   time.Duration(p.HoldMS) * time.Millisecond,
		}
	}
	if err := client.RunTrajectory(points); err != nil {
		return err
	}
	fmt.Printf("trajectory accepted (%d points)\n", len(points))
	return nil
}

func serveCommand(ctx *cli.Context, client *arm.Client) error {
	return bridge.NewServer(client).ListenAndServe(ctx.String("listen"))
}
