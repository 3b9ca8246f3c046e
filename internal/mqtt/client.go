package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
	"github.com/Capstone-E1/aquasmart_calculators/internal/services"
)

const connectTimeout = 15 * time.Second

// CommandHandler runs a stopwatch command received from the bench rig
type CommandHandler func(services.StopwatchCommand) (*services.CommandResult, error)

// Client bridges the SDI bench rig to the stopwatch and publishes results
type Client struct {
	client         mqtt.Client
	config         *Config
	commandHandler CommandHandler
	errorHandler   func(error)
	isConnected    atomic.Bool
}

// Config holds MQTT connection configuration
type Config struct {
	BrokerURL           string
	ClientID            string
	Username            string
	Password            string
	KeepAlive           time.Duration
	PingTimeout         time.Duration
	ConnectRetry        bool
	TopicRigCommand     string
	TopicSDIResults     string
	TopicScalingResults string
}

// DefaultConfig returns default MQTT configuration
func DefaultConfig() *Config {
	return &Config{
		BrokerURL:           "tcp://localhost:1883",
		ClientID:            "aquasmart_calculators",
		KeepAlive:           30 * time.Second,
		PingTimeout:         10 * time.Second,
		ConnectRetry:        true,
		TopicRigCommand:     "watercalc/sdi/rig/command",
		TopicSDIResults:     "watercalc/sdi/results",
		TopicScalingResults: "watercalc/scaling/results",
	}
}

// NewClient creates a new MQTT client for the bench rig
func NewClient(config *Config, handler CommandHandler) *Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.BrokerURL)
	opts.SetClientID(config.ClientID)
	opts.SetKeepAlive(config.KeepAlive)
	opts.SetPingTimeout(config.PingTimeout)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(config.ConnectRetry)

	if config.Username != "" {
		opts.SetUsername(config.Username)
	}
	if config.Password != "" {
		opts.SetPassword(config.Password)
	}

	client := &Client{
		config:         config,
		commandHandler: handler,
	}

	opts.SetDefaultPublishHandler(client.defaultMessageHandler)
	opts.SetOnConnectHandler(client.onConnect)
	opts.SetConnectionLostHandler(client.onConnectionLost)

	client.client = mqtt.NewClient(opts)

	return client
}

// Connect establishes connection to MQTT broker
func (c *Client) Connect() error {
	log.Println("Connecting to MQTT broker...")

	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		// Stop background retries so the caller can run without the bridge
		c.client.Disconnect(0)
		return fmt.Errorf("timed out connecting to MQTT broker %s", c.config.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	log.Println("Successfully connected to MQTT broker")
	c.isConnected.Store(true)
	return nil
}

// Disconnect closes the MQTT connection
func (c *Client) Disconnect() {
	if c.isConnected.Swap(false) {
		c.client.Disconnect(250)
		log.Println("Disconnected from MQTT broker")
	}
}

// IsConnected returns the connection status
func (c *Client) IsConnected() bool {
	return c.isConnected.Load() && c.client.IsConnected()
}

// SetErrorHandler sets the callback function for errors
func (c *Client) SetErrorHandler(handler func(error)) {
	c.errorHandler = handler
}

// SubscribeToRigCommands subscribes to stopwatch commands from the bench rig
func (c *Client) SubscribeToRigCommands() error {
	topic := c.config.TopicRigCommand
	if token := c.client.Subscribe(topic, 1, c.rigCommandHandler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
	}
	log.Printf("Subscribed to topic: %s", topic)
	return nil
}

func (c *Client) rigCommandHandler(_ mqtt.Client, msg mqtt.Message) {
	log.Printf("Received rig command on topic %s: %s", msg.Topic(), string(msg.Payload()))
	c.HandleCommandPayload(msg.Payload())
}

// HandleCommandPayload parses and runs one rig command payload
func (c *Client) HandleCommandPayload(payload []byte) (*services.CommandResult, error) {
	cmd, err := services.ParseStopwatchCommand(payload)
	if err != nil {
		c.reportError(fmt.Errorf("rig command parsing failed: %w", err))
		return nil, err
	}

	if c.commandHandler == nil {
		return nil, fmt.Errorf("no command handler for %s", cmd)
	}

	result, err := c.commandHandler(cmd)
	if err != nil {
		c.reportError(fmt.Errorf("rig command %s failed: %w", cmd, err))
		return nil, err
	}

	log.Printf("Rig command %s applied: %s", cmd, result.State.Display)
	return result, nil
}

func (c *Client) reportError(err error) {
	log.Printf("%v", err)
	if c.errorHandler != nil {
		c.errorHandler(err)
	}
}

// defaultMessageHandler handles messages on unsubscribed topics
func (c *Client) defaultMessageHandler(_ mqtt.Client, msg mqtt.Message) {
	log.Printf("Received message on unhandled topic %s: %s", msg.Topic(), string(msg.Payload()))
}

// onConnect callback when connection is established. Subscriptions are
// renewed because the session is clean.
func (c *Client) onConnect(_ mqtt.Client) {
	log.Println("MQTT client connected")
	c.isConnected.Store(true)

	if err := c.SubscribeToRigCommands(); err != nil {
		c.reportError(err)
	}
}

// onConnectionLost callback when connection is lost
func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	log.Printf("MQTT connection lost: %v", err)
	c.isConnected.Store(false)

	if c.errorHandler != nil {
		c.errorHandler(fmt.Errorf("MQTT connection lost: %w", err))
	}
}

func (c *Client) publishJSON(topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", topic, err)
	}

	if token := c.client.Publish(topic, 1, false, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, token.Error())
	}

	log.Printf("Published to %s (%d bytes)", topic, len(payload))
	return nil
}

// PublishSDIReport publishes a calculated SDI test summary
func (c *Client) PublishSDIReport(report *models.SDIReport) error {
	return c.publishJSON(c.config.TopicSDIResults, report)
}

// PublishScalingResult publishes a calculated scaling result
func (c *Client) PublishScalingResult(result *models.ScalingResult) error {
	return c.publishJSON(c.config.TopicScalingResults, result)
}
