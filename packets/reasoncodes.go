// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import "fmt"

// MQTT 5.0 reason codes. A value below 0x80 indicates success; 0x80 and
// above indicate failure. Not every code is legal in every packet; the
// normative per-packet tables are in the MQTT 5.0 specification.
const (
	RCSuccess                     byte = 0x00 // also: Normal disconnection, Granted QoS 0
	RCGrantedQoS1                 byte = 0x01
	RCGrantedQoS2                 byte = 0x02
	RCDisconnectWithWill          byte = 0x04
	RCNoMatchingSubscribers       byte = 0x10
	RCNoSubscriptionExisted       byte = 0x11
	RCContinueAuthentication      byte = 0x18
	RCReAuthenticate              byte = 0x19
	RCUnspecifiedError            byte = 0x80
	RCMalformedPacket             byte = 0x81
	RCProtocolError               byte = 0x82
	RCImplementationSpecificError byte = 0x83
	RCUnsupportedProtocolVersion  byte = 0x84
	RCClientIdentifierNotValid    byte = 0x85
	RCBadUserNameOrPassword       byte = 0x86
	RCNotAuthorized               byte = 0x87
	RCServerUnavailable           byte = 0x88
	RCServerBusy                  byte = 0x89
	RCBanned                      byte = 0x8A
	RCServerShuttingDown          byte = 0x8B
	RCBadAuthenticationMethod     byte = 0x8C
	RCKeepAliveTimeout            byte = 0x8D
	RCSessionTakenOver            byte = 0x8E
	RCTopicFilterInvalid          byte = 0x8F
	RCTopicNameInvalid            byte = 0x90
	RCPacketIdentifierInUse       byte = 0x91
	RCPacketIdentifierNotFound    byte = 0x92
	RCReceiveMaximumExceeded      byte = 0x93
	RCTopicAliasInvalid           byte = 0x94
	RCPacketTooLarge              byte = 0x95
	RCMessageRateTooHigh          byte = 0x96
	RCQuotaExceeded               byte = 0x97
	RCAdministrativeAction        byte = 0x98
	RCPayloadFormatInvalid        byte = 0x99
	RCRetainNotSupported          byte = 0x9A
	RCQoSNotSupported             byte = 0x9B
	RCUseAnotherServer            byte = 0x9C
	RCServerMoved                 byte = 0x9D
	RCSharedSubNotSupported       byte = 0x9E
	RCConnectionRateExceeded      byte = 0x9F
	RCMaximumConnectTime          byte = 0xA0
	RCSubscriptionIDsNotSupported byte = 0xA1
	RCWildcardSubsNotSupported    byte = 0xA2
)

// MQTT 3.x CONNACK return codes.
const (
	Accepted                        byte = 0x00
	ErrRefusedBadProtocolVersion    byte = 0x01
	ErrRefusedIDRejected            byte = 0x02
	ErrRefusedServerUnavailable     byte = 0x03
	ErrRefusedBadUsernameOrPassword byte = 0x04
	ErrRefusedNotAuthorized         byte = 0x05
)

// ConnackReturnCodes maps the v3 CONNACK return codes to a string
// representation.
var ConnackReturnCodes = map[byte]string{
	Accepted:                        "Connection Accepted",
	ErrRefusedBadProtocolVersion:    "Connection Refused: Bad Protocol Version",
	ErrRefusedIDRejected:            "Connection Refused: Client Identifier Rejected",
	ErrRefusedServerUnavailable:     "Connection Refused: Server Unavailable",
	ErrRefusedBadUsernameOrPassword: "Connection Refused: Username or Password in unknown format",
	ErrRefusedNotAuthorized:         "Connection Refused: Not Authorised",
}

// ReasonCodeNames maps the v5 reason codes to a string representation.
// RCSuccess covers Normal Disconnection and Granted QoS 0 as well; the
// meaning follows from the packet carrying it.
var ReasonCodeNames = map[byte]string{
	RCSuccess:                     "Success",
	RCGrantedQoS1:                 "Granted QoS 1",
	RCGrantedQoS2:                 "Granted QoS 2",
	RCDisconnectWithWill:          "Disconnect with Will Message",
	RCNoMatchingSubscribers:       "No Matching Subscribers",
	RCNoSubscriptionExisted:       "No Subscription Existed",
	RCContinueAuthentication:      "Continue Authentication",
	RCReAuthenticate:              "Re-authenticate",
	RCUnspecifiedError:            "Unspecified Error",
	RCMalformedPacket:             "Malformed Packet",
	RCProtocolError:               "Protocol Error",
	RCImplementationSpecificError: "Implementation Specific Error",
	RCUnsupportedProtocolVersion:  "Unsupported Protocol Version",
	RCClientIdentifierNotValid:    "Client Identifier Not Valid",
	RCBadUserNameOrPassword:       "Bad User Name or Password",
	RCNotAuthorized:               "Not Authorized",
	RCServerUnavailable:           "Server Unavailable",
	RCServerBusy:                  "Server Busy",
	RCBanned:                      "Banned",
	RCServerShuttingDown:          "Server Shutting Down",
	RCBadAuthenticationMethod:     "Bad Authentication Method",
	RCKeepAliveTimeout:            "Keep Alive Timeout",
	RCSessionTakenOver:            "Session Taken Over",
	RCTopicFilterInvalid:          "Topic Filter Invalid",
	RCTopicNameInvalid:            "Topic Name Invalid",
	RCPacketIdentifierInUse:       "Packet Identifier In Use",
	RCPacketIdentifierNotFound:    "Packet Identifier Not Found",
	RCReceiveMaximumExceeded:      "Receive Maximum Exceeded",
	RCTopicAliasInvalid:           "Topic Alias Invalid",
	RCPacketTooLarge:              "Packet Too Large",
	RCMessageRateTooHigh:          "Message Rate Too High",
	RCQuotaExceeded:               "Quota Exceeded",
	RCAdministrativeAction:        "Administrative Action",
	RCPayloadFormatInvalid:        "Payload Format Invalid",
	RCRetainNotSupported:          "Retain Not Supported",
	RCQoSNotSupported:             "QoS Not Supported",
	RCUseAnotherServer:            "Use Another Server",
	RCServerMoved:                 "Server Moved",
	RCSharedSubNotSupported:       "Shared Subscriptions Not Supported",
	RCConnectionRateExceeded:      "Connection Rate Exceeded",
	RCMaximumConnectTime:          "Maximum Connect Time",
	RCSubscriptionIDsNotSupported: "Subscription Identifiers Not Supported",
	RCWildcardSubsNotSupported:    "Wildcard Subscriptions Not Supported",
}

// ReasonCodeName returns the name of a v5 reason code.
func ReasonCodeName(code byte) string {
	if name, ok := ReasonCodeNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%02X)", code)
}

// ConnackReturnCodeName returns the name of a v3 CONNACK return code.
func ConnackReturnCodeName(code byte) string {
	if name, ok := ConnackReturnCodes[code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%02X)", code)
}
