// Package mqtt provides the broker connection shared by the switcher and
// the daily job.
//
// The switcher publishes toggle commands to robohome/switches/<remote> and
// listens on robohome/switches/refresh for "update" notifications, which
// the daily job sends after it rewrites key times.
//
//	daily job ──update──▶ broker ──▶ switcher ──toggle──▶ broker ──▶ remotes
//
// Automatic acknowledgement is turned off. Handlers registered with
// SubscribeAck receive an ack function; plain Subscribe handlers are acked
// when they return. A Last Will on robohome/system/status marks the client
// offline if it drops.
//
// # Usage
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.SubscribeAck(mqtt.Topics{}.SwitchRefresh(), 1,
//	    func(topic string, payload []byte, ack func()) {
//	        handle(payload)
//	        ack()
//	    })
package mqtt
