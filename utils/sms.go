package utils

import (
	"fmt"
	"log"

	"lms/config"

	"github.com/go-resty/resty/v2"
)

// SendOTPToMobile delivers the verification code over the SMS gateway
func SendOTPToMobile(mobile, otp string) error {
	if config.AppConfig.SMSApiKey == "" {
		log.Printf("SMS gateway not configured, skipping OTP SMS to %s", mobile)
		return nil
	}

	client := resty.New()
	resp, err := client.R().
		SetQueryParams(map[string]string{
			"authorization":    config.AppConfig.SMSApiKey,
			"route":            "dlt",
			"sender_id":        config.AppConfig.SMSSenderID,
			"variables_values": fmt.Sprintf("%s|10", otp),
			"flash":            "0",
			"numbers":          mobile,
		}).
		Get(config.AppConfig.SMSApiURL)
	if err != nil {
		log.Printf("Error while sending OTP: %v", err)
		return err
	}

	if resp.StatusCode() != 200 {
		log.Printf("Failed to send OTP, response code: %d", resp.StatusCode())
		return fmt.Errorf("failed to send OTP, code: %d", resp.StatusCode())
	}

	log.Println("OTP sent successfully to", mobile)
	return nil
}
