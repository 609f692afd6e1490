// File: /services/friend_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"wavelink-api/models"
	"wavelink-api/realtime"
	"wavelink-api/repositories"
)

// FriendService is the relationship state machine. Each ordered pair is
// in exactly one of: no relation, one pending request, or friends; every
// transition validates its guard against stored state, mutates both
// user records, then relays events to both parties.
//
// The two records are updated one at a time under row locks. Each single
// mutation is a compare-and-set, so concurrent conflicting transitions
// resolve first-writer-wins, but the pair of updates is not atomic as a
// whole: a crash between them can leave a dangling half-request.
type FriendService struct {
	users    *repositories.UserRepository
	messages *MessageService
	relay    *realtime.Relay
}

func NewFriendService(users *repositories.UserRepository, messages *MessageService,
	relay *realtime.Relay) *FriendService {
	return &FriendService{
		users:    users,
		messages: messages,
		relay:    relay,
	}
}

// SendRequest moves (sender, target) from no relation to a pending
// request. Fails with a conflict when they are already friends or a
// request is pending in either direction.
func (s *FriendService) SendRequest(ctx context.Context, senderID, targetID string) error {
	if senderID == targetID {
		return fmt.Errorf("%w: cannot send a friend request to yourself", ErrValidation)
	}
	if _, err := s.users.FindByID(senderID); err != nil {
		return mapUserErr(err, senderID)
	}

	err := s.users.UpdateLocked(targetID, func(target *models.User) error {
		if target.Friends.Contains(senderID) {
			return fmt.Errorf("%w: already friends", ErrConflict)
		}
		if target.FriendRequests.Contains(senderID) {
			return fmt.Errorf("%w: friend request already sent", ErrConflict)
		}
		if target.SentRequests.Contains(senderID) {
			return fmt.Errorf("%w: pending request exists in the other direction", ErrConflict)
		}
		target.FriendRequests.Add(senderID)
		return nil
	})
	if err != nil {
		return mapUserErr(err, targetID)
	}

	err = s.users.UpdateLocked(senderID, func(sender *models.User) error {
		sender.SentRequests.Add(targetID)
		return nil
	})
	if err != nil {
		return mapUserErr(err, senderID)
	}

	payload := map[string]string{"requesterId": senderID, "targetUserId": targetID}
	s.relay.EmitTo(targetID, "friendRequestReceived", payload)
	s.relay.EmitTo(senderID, "friendRequestReceived", payload)

	logrus.WithFields(logrus.Fields{
		"sender_id": senderID,
		"target_id": targetID,
	}).Info("Friend request sent")
	return nil
}

// Accept moves a pending request to friendship. The guard is checked on
// the accepter's record under its row lock; a concurrent cancel that
// got there first wins and this call reports a conflict.
func (s *FriendService) Accept(ctx context.Context, accepterID, requesterID string) error {
	if _, err := s.users.FindByID(requesterID); err != nil {
		return mapUserErr(err, requesterID)
	}

	err := s.users.UpdateLocked(accepterID, func(accepter *models.User) error {
		if !accepter.FriendRequests.Contains(requesterID) {
			return fmt.Errorf("%w: no such pending request", ErrConflict)
		}
		accepter.FriendRequests.Remove(requesterID)
		accepter.Friends.Add(requesterID)
		return nil
	})
	if err != nil {
		return mapUserErr(err, accepterID)
	}

	err = s.users.UpdateLocked(requesterID, func(requester *models.User) error {
		requester.SentRequests.Remove(accepterID)
		requester.Friends.Add(accepterID)
		return nil
	})
	if err != nil {
		return mapUserErr(err, requesterID)
	}

	payload := map[string]string{"requesterId": requesterID, "accepterId": accepterID}
	s.relay.EmitTo(requesterID, "friendRequestAccepted", payload)
	s.relay.EmitTo(accepterID, "friendRequestAccepted", payload)

	logrus.WithFields(logrus.Fields{
		"accepter_id":  accepterID,
		"requester_id": requesterID,
	}).Info("Friend request accepted")
	return nil
}

// Cancel withdraws a request the sender had sent. Removals are
// unconditional: cancelling an already-resolved request is a no-op on
// the sets.
func (s *FriendService) Cancel(ctx context.Context, senderID, targetID string) error {
	err := s.users.UpdateLocked(targetID, func(target *models.User) error {
		target.FriendRequests.Remove(senderID)
		return nil
	})
	if err != nil {
		return mapUserErr(err, targetID)
	}

	err = s.users.UpdateLocked(senderID, func(sender *models.User) error {
		sender.SentRequests.Remove(targetID)
		return nil
	})
	if err != nil {
		return mapUserErr(err, senderID)
	}

	payload := map[string]string{"requesterId": senderID, "targetUserId": targetID}
	s.relay.EmitTo(targetID, "friendRequestCancelled", payload)
	s.relay.EmitTo(senderID, "friendRequestCancelled", payload)
	return nil
}

// Reject declines a request the rejecter had received.
func (s *FriendService) Reject(ctx context.Context, rejecterID, requesterID string) error {
	err := s.users.UpdateLocked(rejecterID, func(rejecter *models.User) error {
		rejecter.FriendRequests.Remove(requesterID)
		return nil
	})
	if err != nil {
		return mapUserErr(err, rejecterID)
	}

	err = s.users.UpdateLocked(requesterID, func(requester *models.User) error {
		requester.SentRequests.Remove(rejecterID)
		return nil
	})
	if err != nil {
		return mapUserErr(err, requesterID)
	}

	payload := map[string]string{"requesterId": requesterID, "rejecterId": rejecterID}
	s.relay.EmitTo(requesterID, "friendRequestRejected", payload)
	s.relay.EmitTo(rejecterID, "friendRequestRejected", payload)
	return nil
}

// Unfriend dissolves a friendship and cascades into the message store:
// the whole thread between the pair is hard-deleted, attachments
// included. Friendship and message history share the same lifetime.
func (s *FriendService) Unfriend(ctx context.Context, userID, friendID string) error {
	err := s.users.UpdateLocked(userID, func(user *models.User) error {
		user.Friends.Remove(friendID)
		return nil
	})
	if err != nil {
		return mapUserErr(err, userID)
	}

	err = s.users.UpdateLocked(friendID, func(friend *models.User) error {
		friend.Friends.Remove(userID)
		return nil
	})
	if err != nil {
		return mapUserErr(err, friendID)
	}

	if err := s.messages.PurgeConversation(ctx, userID, friendID); err != nil {
		return err
	}

	payload := map[string]string{"userId": userID, "friendId": friendID}
	s.relay.EmitTo(friendID, "userUnfriended", payload)
	s.relay.EmitTo(userID, "userUnfriended", payload)

	logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"friend_id": friendID,
	}).Info("Friendship dissolved")
	return nil
}

// Friends returns the user's friend list as public summaries.
func (s *FriendService) Friends(ctx context.Context, userID string) ([]models.UserSummary, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, mapUserErr(err, userID)
	}

	friends, err := s.users.FindAllByIDs(user.Friends)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependency, err)
	}
	return models.Summaries(friends), nil
}

// Requests returns the user's received and sent pending requests.
func (s *FriendService) Requests(ctx context.Context, userID string) (received, sent []models.UserSummary, err error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, nil, mapUserErr(err, userID)
	}

	receivedUsers, err := s.users.FindAllByIDs(user.FriendRequests)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDependency, err)
	}
	sentUsers, err := s.users.FindAllByIDs(user.SentRequests)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDependency, err)
	}
	return models.Summaries(receivedUsers), models.Summaries(sentUsers), nil
}

// SearchUsers finds users matching query who are not already the
// viewer's friends.
func (s *FriendService) SearchUsers(ctx context.Context, viewerID, query string) ([]models.UserSummary, error) {
	viewer, err := s.users.FindByID(viewerID)
	if err != nil {
		return nil, mapUserErr(err, viewerID)
	}

	users, err := s.users.Search(viewerID, query, viewer.Friends)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependency, err)
	}
	return models.Summaries(users), nil
}

// mapUserErr folds storage errors into the service taxonomy, passing
// taxonomy errors through untouched.
func mapUserErr(err error, userID string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	case errors.Is(err, ErrConflict), errors.Is(err, ErrValidation),
		errors.Is(err, ErrForbidden), errors.Is(err, ErrNotFound):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrDependency, err)
	}
}
