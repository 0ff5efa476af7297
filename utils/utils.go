package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateOTP generates a 6-digit OTP
func GenerateOTP() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano())) // Create a new random number generator
	otp := ""
	for i := 0; i < 6; i++ {
		otp += fmt.Sprintf("%d", rng.Intn(10)) // Generate a random digit (0-9) and append to OTP string
	}
	return otp
}

// SendOTPEmail sends the verification code to the user's email
func SendOTPEmail(otp, email string) error {
	body := fmt.Sprintf(`
		<p style="font-size: 16px; color: #555555; text-align: center;">Your One Time Password (OTP) is:</p>
		<h1 style="text-align: center; color: #4CAF50; font-size: 40px; margin: 20px 0;">%s</h1>
		<p style="font-size: 14px; color: #999999; text-align: center;">Do not share this OTP with anyone. It expires in 5 minutes.</p>
	`, otp)

	return SendEmail([]string{email}, "OTP Verification Code for LearnHub", getEmailTemplate("OTP Verification", body))
}
