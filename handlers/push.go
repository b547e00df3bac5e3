package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"forum/storage"
)

// PushSubscription stores one browser push endpoint for a user.
type PushSubscription struct {
	ID     string               `bson:"_id"`
	UserID string               `bson:"userId"`
	Sub    webpush.Subscription `bson:"sub"`
}

func GetVapidPublicKey(c *gin.Context) {
	if cfg.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Push notifications not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": cfg.VAPIDPublicKey})
}

func SubscribePush(c *gin.Context) {
	var sub webpush.Subscription
	if err := c.ShouldBindJSON(&sub); err != nil || sub.Endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription"})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	userID := c.GetString("userId")

	// One record per endpoint; re-subscribing replaces the old one.
	if _, err := pushSubs.DeleteMany(ctx, bson.M{"sub.endpoint": sub.Endpoint}); err != nil {
		log.Debug().Err(err).Msg("stale subscription cleanup failed")
	}

	record := PushSubscription{
		ID:     primitive.NewObjectID().Hex(),
		UserID: userID,
		Sub:    sub,
	}
	if err := pushSubs.InsertOne(ctx, &record); err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("push subscribe failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save subscription"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed"})
}

// notifyUser sends a best-effort push notification to every endpoint a
// user has registered. Failures are logged and otherwise ignored; push
// delivery never blocks or fails the triggering request.
func notifyUser(userID, title, body string) {
	if cfg.VAPIDPrivateKey == "" || cfg.VAPIDPublicKey == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var subs []PushSubscription
	if err := pushSubs.FindAll(ctx, bson.M{"userId": userID}, storage.FindOptions{}, &subs); err != nil {
		log.Warn().Err(err).Str("userId", userID).Msg("push subscription lookup failed")
		return
	}

	payload, err := json.Marshal(gin.H{"title": title, "body": body})
	if err != nil {
		return
	}
	for i := range subs {
		resp, err := webpush.SendNotification(payload, &subs[i].Sub, &webpush.Options{
			Subscriber:      cfg.VAPIDSubject,
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			TTL:             60,
		})
		if err != nil {
			log.Warn().Err(err).Str("userId", userID).Msg("push send failed")
			continue
		}
		resp.Body.Close()
	}
}
