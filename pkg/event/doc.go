// Package event はストアフロントのドメインイベントを定義する。
package event
