package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const flashKey = "flash"

// setFlash stores a one-shot message for the next rendered page.
func setFlash(store *session.Store, c *fiber.Ctx, message string) error {
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(flashKey, message)
	return sess.Save()
}

// popFlash returns and clears the pending message, if any.
func popFlash(store *session.Store, c *fiber.Ctx) (string, error) {
	sess, err := store.Get(c)
	if err != nil {
		return "", err
	}
	message, ok := sess.Get(flashKey).(string)
	if !ok {
		return "", nil
	}
	sess.Delete(flashKey)
	return message, sess.Save()
}
