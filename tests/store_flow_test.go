package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStoreFlow covers catalog -> cart -> checkout. The payment gateway is
// unconfigured in tests, so orders stay in "created" without a gateway id.
func TestStoreFlow(t *testing.T) {
	adminID, adminToken := registerUser(t, "store_admin")
	promoteToAdmin(t, adminID)
	_, buyer := registerUser(t, "store_buyer")

	status, body := request(t, http.MethodPost, "/api/admin/books", adminToken, map[string]interface{}{
		"Title":         "Quantitative Aptitude",
		"Author":        "R.S. Aggarwal",
		"Category":      "Banking",
		"Price":         499,
		"DiscountPrice": 399,
		"Stock":         50,
		"IsAvailable":   true,
	})
	require.Equal(t, http.StatusCreated, status, "create book: %v", body)
	bookID := dataField(t, body)["ID"].(float64)

	status, body = request(t, http.MethodGet, "/api/books", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body["data"])

	// add twice: quantities merge
	for i := 0; i < 2; i++ {
		status, body = request(t, http.MethodPost, "/api/cart", buyer, map[string]interface{}{
			"book_id":  bookID,
			"quantity": 1,
		})
		require.Contains(t, []int{http.StatusOK, http.StatusCreated}, status, "add to cart: %v", body)
	}

	status, body = request(t, http.MethodGet, "/api/cart", buyer, nil)
	require.Equal(t, http.StatusOK, status)
	cart := dataField(t, body)
	items := cart["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, float64(2), items[0].(map[string]interface{})["quantity"])
	assert.InDelta(t, 798.0, cart["total"].(float64), 1e-9)

	// checkout with an empty cart is rejected for another user
	status, _ = request(t, http.MethodPost, "/api/orders/checkout", adminToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = request(t, http.MethodPost, "/api/orders/checkout", buyer, map[string]string{
		"shipping_address": "12 MG Road, Pune",
	})
	require.Equal(t, http.StatusCreated, status, "checkout: %v", body)
	order := dataField(t, body)
	assert.InDelta(t, 798.0, order["total"].(float64), 1e-9)
	assert.NotEmpty(t, order["receipt"])

	// cart is emptied by checkout
	status, body = request(t, http.MethodGet, "/api/cart", buyer, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, dataField(t, body)["items"])

	// order history
	status, body = request(t, http.MethodGet, "/api/orders", buyer, nil)
	require.Equal(t, http.StatusOK, status)
	orders := body["data"].([]interface{})
	require.Len(t, orders, 1)
	assert.Equal(t, "created", orders[0].(map[string]interface{})["Status"])

	// a forged payment callback cannot mark the order paid
	status, _ = request(t, http.MethodPost, "/api/orders/verify-payment", buyer, map[string]interface{}{
		"order_id":            order["order_id"],
		"razorpay_order_id":   "order_forged",
		"razorpay_payment_id": "pay_forged",
		"razorpay_signature":  "deadbeef",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

// TestCartManagement covers setting quantities outright and clearing the
// cart, alongside the add/remove paths exercised by the checkout flow.
func TestCartManagement(t *testing.T) {
	adminID, adminToken := registerUser(t, "cart_admin")
	promoteToAdmin(t, adminID)
	_, buyer := registerUser(t, "cart_buyer")
	_, stranger := registerUser(t, "cart_stranger")

	status, body := request(t, http.MethodPost, "/api/admin/books", adminToken, map[string]interface{}{
		"Title":       "General Knowledge 2026",
		"Author":      "Manohar Pandey",
		"Price":       250,
		"Stock":       30,
		"IsAvailable": true,
	})
	require.Equal(t, http.StatusCreated, status, "create book: %v", body)
	bookID := dataField(t, body)["ID"].(float64)

	status, body = request(t, http.MethodPost, "/api/cart", buyer, map[string]interface{}{
		"book_id":  bookID,
		"quantity": 2,
	})
	require.Equal(t, http.StatusCreated, status, "add to cart: %v", body)
	itemID := fmtID(dataField(t, body)["ID"])

	// Quantities are set, not merged, so they can go down as well as up.
	status, body = request(t, http.MethodPut, "/api/cart/"+itemID, buyer,
		map[string]interface{}{"quantity": 5})
	require.Equal(t, http.StatusOK, status, "update quantity: %v", body)

	status, body = request(t, http.MethodGet, "/api/cart", buyer, nil)
	require.Equal(t, http.StatusOK, status)
	items := dataField(t, body)["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, float64(5), items[0].(map[string]interface{})["quantity"])

	status, _ = request(t, http.MethodPut, "/api/cart/"+itemID, buyer,
		map[string]interface{}{"quantity": 1})
	require.Equal(t, http.StatusOK, status)

	// negative quantity is rejected, missing quantity too
	status, _ = request(t, http.MethodPut, "/api/cart/"+itemID, buyer,
		map[string]interface{}{"quantity": -1})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = request(t, http.MethodPut, "/api/cart/"+itemID, buyer, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, status)

	// another user's cart item is out of reach
	status, _ = request(t, http.MethodPut, "/api/cart/"+itemID, stranger,
		map[string]interface{}{"quantity": 3})
	assert.Equal(t, http.StatusNotFound, status)

	// zero removes the line
	status, _ = request(t, http.MethodPut, "/api/cart/"+itemID, buyer,
		map[string]interface{}{"quantity": 0})
	require.Equal(t, http.StatusOK, status)
	status, body = request(t, http.MethodGet, "/api/cart", buyer, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, dataField(t, body)["items"])

	// clear wipes whatever is left
	status, _ = request(t, http.MethodPost, "/api/cart", buyer, map[string]interface{}{
		"book_id":  bookID,
		"quantity": 2,
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = request(t, http.MethodDelete, "/api/cart", buyer, nil)
	require.Equal(t, http.StatusOK, status)
	status, body = request(t, http.MethodGet, "/api/cart", buyer, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, dataField(t, body)["items"])
}

func TestLeads(t *testing.T) {
	adminID, adminToken := registerUser(t, "leads_admin")
	promoteToAdmin(t, adminID)

	// public capture, no auth
	status, _ := request(t, http.MethodPost, "/api/leads", "", map[string]interface{}{
		"name":    "Asha",
		"phone":   "9876543210",
		"email":   "asha@example.com",
		"message": "Interested in the banking course",
	})
	require.Equal(t, http.StatusCreated, status)

	// missing phone is rejected
	status, _ = request(t, http.MethodPost, "/api/leads", "", map[string]string{"name": "NoPhone"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := request(t, http.MethodGet, "/api/admin/leads", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	leads := body["data"].([]interface{})
	require.NotEmpty(t, leads)

	leadID := fmtID(leads[0].(map[string]interface{})["ID"])
	status, _ = request(t, http.MethodPut, "/api/admin/leads/"+leadID, adminToken,
		map[string]string{"status": "contacted"})
	assert.Equal(t, http.StatusOK, status)

	status, _ = request(t, http.MethodPut, "/api/admin/leads/"+leadID, adminToken,
		map[string]string{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCoursesFlow(t *testing.T) {
	adminID, adminToken := registerUser(t, "course_admin")
	promoteToAdmin(t, adminID)
	_, learner := registerUser(t, "course_learner")

	status, body := request(t, http.MethodPost, "/api/admin/courses", adminToken, map[string]interface{}{
		"Title":       "Banking Foundation",
		"Category":    "Banking",
		"IsPublished": true,
	})
	require.Equal(t, http.StatusCreated, status, "create course: %v", body)
	courseID := fmtID(dataField(t, body)["ID"])

	for _, title := range []string{"Intro", "Number Systems"} {
		status, body = request(t, http.MethodPost, "/api/admin/courses/"+courseID+"/lessons", adminToken,
			map[string]interface{}{"title": title, "video_url": "https://cdn.example.com/" + title, "duration": 20})
		require.Equal(t, http.StatusCreated, status, "add lesson: %v", body)
	}

	// progress before enrolling is rejected
	status, _ = request(t, http.MethodPost, "/api/courses/"+courseID+"/progress", learner,
		map[string]interface{}{"lesson_id": 1})
	assert.Equal(t, http.StatusForbidden, status)

	// enroll is idempotent
	status, _ = request(t, http.MethodPost, "/api/courses/"+courseID+"/enroll", learner, nil)
	require.Equal(t, http.StatusCreated, status)
	status, _ = request(t, http.MethodPost, "/api/courses/"+courseID+"/enroll", learner, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = request(t, http.MethodGet, "/api/courses/"+courseID, learner, nil)
	require.Equal(t, http.StatusOK, status)
	detail := dataField(t, body)
	assert.Equal(t, true, detail["enrolled"])
	lessons := detail["lessons"].([]interface{})
	require.Len(t, lessons, 2)

	firstLessonID := lessons[0].(map[string]interface{})["id"].(float64)
	status, body = request(t, http.MethodPost, "/api/courses/"+courseID+"/progress", learner,
		map[string]interface{}{"lesson_id": firstLessonID})
	require.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 50.0, dataField(t, body)["completion_rate"].(float64), 1e-9)
}
